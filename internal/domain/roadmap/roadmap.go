package roadmap

// Fallback titles.
const (
	GeneralKey      = "general"
	AdditionalTitle = "Additional"
)

// Item is a resource projected into a step. Title is null when the resource has none.
type Item struct {
	Title            *string  `json:"title"`
	Link             string   `json:"link"`
	Source           string   `json:"source"`
	Labels           []string `json:"labels"`
	CredibilityScore float64  `json:"credibility_score"`
	SimilarityScore  float64  `json:"similarity_score"`
}

// Step is one stage of a learning roadmap. Step numbers are 1-based output positions.
type Step struct {
	Step  int    `json:"step"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}
