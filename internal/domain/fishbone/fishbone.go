package fishbone

// MaxPerLane caps the number of entries rendered in each lane.
const MaxPerLane = 10

// Placeholders used when a resource lacks a title or source.
const (
	UntitledPlaceholder      = "Untitled"
	ArticleSourcePlaceholder = "Unknown"
	VideoSourcePlaceholder   = "YouTube"
)

// Entry is one numbered resource in a lane. ID starts at 1 within its lane.
type Entry struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Link             string   `json:"link"`
	Source           string   `json:"source"`
	Labels           []string `json:"labels"`
	CredibilityScore float64  `json:"credibility_score"`
	SimilarityScore  float64  `json:"similarity_score"`
}

// Result is the two-lane view for a single query.
// Totals count the emitted (capped) lanes, not everything retrieved.
type Result struct {
	Query         string  `json:"query"`
	Articles      []Entry `json:"articles"`
	Videos        []Entry `json:"videos"`
	TotalArticles int     `json:"total_articles"`
	TotalVideos   int     `json:"total_videos"`
}

// Empty returns the result for a query that retrieved nothing.
func Empty(query string) Result {
	return Result{Query: query, Articles: []Entry{}, Videos: []Entry{}}
}
