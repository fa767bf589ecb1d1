package resource

import "math"

// Resource is one retrieved learning resource (article or video) with its relevance score.
// Empty title or source means the field was absent in the dataset.
type Resource struct {
	id          string
	title       string
	link        string
	source      string
	labels      []string
	credibility float64
	similarity  float64
}

// New creates a Resource. Labels are ordered from general to specific and copied.
func New(id, title, link, source string, labels []string, credibility float64) Resource {
	return Resource{
		id:          id,
		title:       title,
		link:        link,
		source:      source,
		labels:      cloneLabels(labels),
		credibility: finiteOrZero(credibility),
	}
}

// WithSimilarity returns a copy carrying the given similarity score.
func (r Resource) WithSimilarity(score float64) Resource {
	r.similarity = finiteOrZero(score)
	return r
}

// ID returns the dataset identifier.
func (r Resource) ID() string { return r.id }

// Title returns the title, empty when absent.
func (r Resource) Title() string { return r.title }

// Link returns the resource URL, possibly empty.
func (r Resource) Link() string { return r.link }

// Source returns the publisher, empty when absent.
func (r Resource) Source() string { return r.source }

// Labels returns a copy of the topic hierarchy.
func (r Resource) Labels() []string { return cloneLabels(r.labels) }

// Credibility returns the source trust score.
func (r Resource) Credibility() float64 { return r.credibility }

// Similarity returns the query relevance score.
func (r Resource) Similarity() float64 { return r.similarity }

// SimilarityFromDistance maps a non-negative retrieval distance into (0, 1].
func SimilarityFromDistance(distance float64) float64 {
	if distance < 0 || math.IsNaN(distance) {
		distance = 0
	}
	return 1.0 / (1.0 + distance)
}

func cloneLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
