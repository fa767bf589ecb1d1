package roadmap

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/learnora/learnora/internal/domain"
	domroad "github.com/learnora/learnora/internal/domain/roadmap"
	"github.com/learnora/learnora/internal/domain/resource"
)

// keyLabelDepth is how many leading labels form a topic key.
const keyLabelDepth = 2

type group struct {
	key     string
	members []resource.Resource
	best    float64
}

// Build orders retrieved resources into at most maxSteps learning steps.
//
// Resources are grouped by topic key (see groupKey), groups are ranked by
// their best similarity and each group becomes one step with members sorted
// by credibility, then similarity. When there are fewer groups than
// maxSteps the remaining steps are single resources taken from the head of
// the input, which may repeat resources already placed in a group step.
func Build(query string, resources []resource.Resource, maxSteps int) ([]domroad.Step, error) {
	steps, _, err := build(query, resources, maxSteps)
	return steps, err
}

// build also reports how many trailing steps are padding.
func build(query string, resources []resource.Resource, maxSteps int) ([]domroad.Step, int, error) {
	if maxSteps < 1 {
		return nil, 0, fmt.Errorf("roadmap for %q: max steps %d: %w", query, maxSteps, domain.ErrInvalidMaxSteps)
	}

	groups := groupByKey(resources)
	slices.SortStableFunc(groups, func(a, b *group) int {
		return cmp.Compare(b.best, a.best)
	})
	if len(groups) > maxSteps {
		groups = groups[:maxSteps]
	}

	steps := make([]domroad.Step, 0, maxSteps)
	for _, g := range groups {
		slices.SortStableFunc(g.members, byCredibilityThenSimilarity)
		items := make([]domroad.Item, len(g.members))
		for i, r := range g.members {
			items[i] = project(r)
		}
		steps = append(steps, domroad.Step{
			Step:  len(steps) + 1,
			Title: g.key,
			Items: items,
		})
	}

	padding := min(maxSteps-len(steps), len(resources))
	for _, r := range resources[:padding] {
		title := r.Title()
		if title == "" {
			title = domroad.AdditionalTitle
		}
		steps = append(steps, domroad.Step{
			Step:  len(steps) + 1,
			Title: title,
			Items: []domroad.Item{project(r)},
		})
	}

	return steps, padding, nil
}

// groupKey derives the topic key of a resource. The first matching rule wins:
//  1. labels present: the first two labels joined by "/"
//  2. source present: the source
//  3. otherwise the general bucket
func groupKey(r resource.Resource) string {
	switch labels := r.Labels(); {
	case len(labels) > 0:
		return strings.Join(labels[:min(len(labels), keyLabelDepth)], "/")
	case r.Source() != "":
		return r.Source()
	default:
		return domroad.GeneralKey
	}
}

// groupByKey keeps groups in first-seen order and members in input order.
func groupByKey(resources []resource.Resource) []*group {
	index := make(map[string]*group)
	var groups []*group
	for _, r := range resources {
		key := groupKey(r)
		g, ok := index[key]
		if !ok {
			g = &group{key: key, best: r.Similarity()}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, r)
		g.best = max(g.best, r.Similarity())
	}
	return groups
}

func byCredibilityThenSimilarity(a, b resource.Resource) int {
	if c := cmp.Compare(b.Credibility(), a.Credibility()); c != 0 {
		return c
	}
	return cmp.Compare(b.Similarity(), a.Similarity())
}

func project(r resource.Resource) domroad.Item {
	var title *string
	if t := r.Title(); t != "" {
		title = &t
	}
	return domroad.Item{
		Title:            title,
		Link:             r.Link(),
		Source:           r.Source(),
		Labels:           r.Labels(),
		CredibilityScore: r.Credibility(),
		SimilarityScore:  r.Similarity(),
	}
}
