package resource

import "regexp"

// videoLinkPatterns match YouTube watch pages, short links, embeds and legacy /v/ paths.
var videoLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube\.com/watch`),
	regexp.MustCompile(`(?i)youtu\.be/`),
	regexp.MustCompile(`(?i)youtube\.com/embed/`),
	regexp.MustCompile(`(?i)youtube\.com/v/`),
}

// IsVideo reports whether link points at a video page. Empty links are never videos.
func IsVideo(link string) bool {
	if link == "" {
		return false
	}
	for _, p := range videoLinkPatterns {
		if p.MatchString(link) {
			return true
		}
	}
	return false
}

// Classify splits resources into articles and videos.
// Every input lands in exactly one output and relative order is kept.
func Classify(resources []Resource) (articles, videos []Resource) {
	articles = make([]Resource, 0, len(resources))
	videos = make([]Resource, 0)
	for _, r := range resources {
		if IsVideo(r.link) {
			videos = append(videos, r)
		} else {
			articles = append(articles, r)
		}
	}
	return articles, videos
}
