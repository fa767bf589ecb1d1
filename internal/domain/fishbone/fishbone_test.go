package fishbone

import (
	"encoding/json"
	"testing"
)

func TestEmpty_EncodesEmptyLanes(t *testing.T) {
	data, err := json.Marshal(Empty("golang"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"query":"golang","articles":[],"videos":[],"total_articles":0,"total_videos":0}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
