package roadmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnora/learnora/internal/domain"
	domroad "github.com/learnora/learnora/internal/domain/roadmap"
	"github.com/learnora/learnora/internal/domain/resource"
)

func doc(title, source string, labels []string, cred, sim float64) resource.Resource {
	return resource.New(title, title, "https://example.com/"+title, source, labels, cred).WithSimilarity(sim)
}

func titles(items []domroad.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.Title != nil {
			out[i] = *it.Title
		}
	}
	return out
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name string
		r    resource.Resource
		want string
	}{
		{"two labels", doc("a", "src", []string{"math", "algebra"}, 0, 0), "math/algebra"},
		{"deep labels", doc("a", "src", []string{"math", "algebra", "linear"}, 0, 0), "math/algebra"},
		{"single label", doc("a", "src", []string{"math"}, 0, 0), "math"},
		{"source fallback", doc("a", "Khan Academy", nil, 0, 0), "Khan Academy"},
		{"general fallback", doc("a", "", nil, 0, 0), domroad.GeneralKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, groupKey(tc.r))
		})
	}
}

func TestBuild_GroupsByLabelPrefix(t *testing.T) {
	in := []resource.Resource{
		doc("a", "", []string{"math", "algebra"}, 0.5, 0.9),
		doc("b", "", []string{"math", "algebra"}, 0.5, 0.8),
		doc("c", "", []string{"math"}, 0.5, 0.7),
	}

	steps, err := Build("algebra", in, 2)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "math/algebra", steps[0].Title)
	assert.ElementsMatch(t, []string{"a", "b"}, titles(steps[0].Items))
	assert.Equal(t, "math", steps[1].Title)
	assert.Equal(t, []string{"c"}, titles(steps[1].Items))
}

func TestBuild_RanksGroupsByMaxSimilarity(t *testing.T) {
	in := []resource.Resource{
		doc("solo", "", []string{"physics"}, 0.5, 0.5),
		doc("weak", "", []string{"math"}, 0.5, 0.1),
		doc("strong", "", []string{"math"}, 0.5, 0.9),
	}

	steps, err := Build("q", in, 2)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "math", steps[0].Title)
	assert.Equal(t, 1, steps[0].Step)
	assert.Equal(t, "physics", steps[1].Title)
	assert.Equal(t, 2, steps[1].Step)
}

func TestBuild_OrdersItemsByCredibilityThenSimilarity(t *testing.T) {
	in := []resource.Resource{
		doc("low-cred", "", []string{"math"}, 0.3, 0.9),
		doc("high-cred", "", []string{"math"}, 0.8, 0.2),
		doc("high-cred-better", "", []string{"math"}, 0.8, 0.4),
	}

	steps, err := Build("q", in, 1)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, []string{"high-cred-better", "high-cred", "low-cred"}, titles(steps[0].Items))
}

func TestBuild_PadsFromInputHead(t *testing.T) {
	in := []resource.Resource{
		doc("first", "", []string{"math"}, 0.5, 0.9),
		doc("", "", []string{"math"}, 0.5, 0.8),
		doc("third", "", []string{"physics"}, 0.5, 0.7),
	}

	steps, err := Build("q", in, 5)
	require.NoError(t, err)
	require.Len(t, steps, 5)

	for i, s := range steps {
		assert.Equal(t, i+1, s.Step)
	}
	assert.Equal(t, "math", steps[0].Title)
	assert.Equal(t, "physics", steps[1].Title)

	// padding repeats the head of the input, one resource per step
	require.Len(t, steps[2].Items, 1)
	assert.Equal(t, "first", steps[2].Title)
	require.NotNil(t, steps[2].Items[0].Title)
	assert.Equal(t, "first", *steps[2].Items[0].Title)
	require.Len(t, steps[3].Items, 1)
	assert.Equal(t, domroad.AdditionalTitle, steps[3].Title)
	assert.Nil(t, steps[3].Items[0].Title)
	require.Len(t, steps[4].Items, 1)
	assert.Equal(t, "third", steps[4].Title)
}

func TestBuild_PaddingLimitedByInput(t *testing.T) {
	in := []resource.Resource{doc("only", "", nil, 0, 0.5)}

	steps, err := Build("q", in, 5)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, domroad.GeneralKey, steps[0].Title)
	assert.Equal(t, "only", steps[1].Title)
}

func TestBuild_EmptyInput(t *testing.T) {
	steps, err := Build("q", nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestBuild_RejectsNonPositiveMaxSteps(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Build("q", []resource.Resource{doc("a", "", nil, 0, 0)}, n)
		require.ErrorIs(t, err, domain.ErrInvalidMaxSteps)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	in := []resource.Resource{
		doc("a", "x", nil, 0.5, 0.5),
		doc("b", "y", nil, 0.5, 0.5),
		doc("c", "", []string{"z"}, 0.5, 0.5),
		doc("d", "x", nil, 0.5, 0.5),
	}

	first, err := Build("q", in, 4)
	require.NoError(t, err)
	second, err := Build("q", in, 4)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	// equal best similarity keeps first-seen group order
	assert.Equal(t, "x", first[0].Title)
	assert.Equal(t, "y", first[1].Title)
	assert.Equal(t, "z", first[2].Title)
}

func TestBuild_MissingItemTitleEncodesNull(t *testing.T) {
	steps, err := Build("q", []resource.Resource{doc("", "", []string{"math"}, 0.5, 0.9)}, 1)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	require.Len(t, steps[0].Items, 1)

	data, err := json.Marshal(steps[0].Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":null`)
}
