package fishbone

import (
	"cmp"
	"slices"

	domfish "github.com/learnora/learnora/internal/domain/fishbone"
	"github.com/learnora/learnora/internal/domain/resource"
)

// Build renders the article/video view of retrieved resources.
// Each lane is ranked by similarity (ties keep retrieval order), capped at
// domfish.MaxPerLane and numbered from 1. Build never fails; an empty input
// yields empty lanes.
func Build(query string, resources []resource.Resource) domfish.Result {
	articles, videos := resource.Classify(resources)

	res := domfish.Result{
		Query:    query,
		Articles: lane(articles, domfish.ArticleSourcePlaceholder),
		Videos:   lane(videos, domfish.VideoSourcePlaceholder),
	}
	res.TotalArticles = len(res.Articles)
	res.TotalVideos = len(res.Videos)
	return res
}

// lane sorts in place; Classify hands over freshly allocated slices.
func lane(rs []resource.Resource, sourcePlaceholder string) []domfish.Entry {
	slices.SortStableFunc(rs, func(a, b resource.Resource) int {
		return cmp.Compare(b.Similarity(), a.Similarity())
	})
	if len(rs) > domfish.MaxPerLane {
		rs = rs[:domfish.MaxPerLane]
	}

	entries := make([]domfish.Entry, len(rs))
	for i, r := range rs {
		entries[i] = domfish.Entry{
			ID:               i + 1,
			Title:            orDefault(r.Title(), domfish.UntitledPlaceholder),
			Link:             r.Link(),
			Source:           orDefault(r.Source(), sourcePlaceholder),
			Labels:           r.Labels(),
			CredibilityScore: r.Credibility(),
			SimilarityScore:  r.Similarity(),
		}
	}
	return entries
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
