package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	domres "github.com/learnora/learnora/internal/domain/resource"
)

// entry is one object of the metadata dataset.
type entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Source      string   `json:"source"`
	Labels      []string `json:"labels"`
	Credibility *float64 `json:"credibility_score"`
}

// LoadDataset decodes a JSON array of resources.
// Entries without an id get one derived from their link, or a random one when the link is empty.
// Entries sharing a link are kept apart by their position. Duplicate explicit ids are an error.
func LoadDataset(r io.Reader) ([]domres.Resource, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	out := make([]domres.Resource, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = deriveID(e.Link)
			if _, dup := seen[id]; dup {
				id = deriveID(fmt.Sprintf("%s#%d", e.Link, i))
			}
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %q (first at %d)", i, id, prev)
		}
		seen[id] = i

		credibility := 0.0
		if e.Credibility != nil {
			credibility = *e.Credibility
		}
		out = append(out, domres.New(id, e.Title, e.Link, e.Source, e.Labels, credibility))
	}
	return out, nil
}

func deriveID(link string) string {
	if link == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

// EmbeddingText is the text embedded for a resource: title, labels, then source.
func EmbeddingText(r domres.Resource) string {
	parts := make([]string, 0, 3)
	if r.Title() != "" {
		parts = append(parts, r.Title())
	}
	if labels := r.Labels(); len(labels) > 0 {
		parts = append(parts, strings.Join(labels, " "))
	}
	if r.Source() != "" {
		parts = append(parts, r.Source())
	}
	return strings.Join(parts, " ")
}
