package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnora/learnora/internal/db"
	"github.com/learnora/learnora/internal/domain"
	domres "github.com/learnora/learnora/internal/domain/resource"
	resrepo "github.com/learnora/learnora/internal/repository/resource"
)

// store is the consumer interface for nearest-neighbour search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN returns up to k resources nearest to vector, closest first,
// each carrying a similarity derived from its distance.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domres.Resource, error) {
	q := &db.KNNQuery{
		IndexName:    resrepo.IndexName,
		VectorField:  resrepo.FieldEmbedding,
		Distance:     resrepo.Distance,
		Vector:       vector,
		K:            k,
		ReturnFields: resrepo.ReturnFields,
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
		}
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrResourceUnavailable, err)
	}

	return toResources(res), nil
}

func toResources(res *db.SearchResult) []domres.Resource {
	if res == nil {
		return []domres.Resource{}
	}
	out := make([]domres.Resource, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := resrepo.IDFromKey(e.Key)
		out = append(out, resrepo.FromHash(id, e.Fields).WithSimilarity(domres.SimilarityFromDistance(e.Score)))
	}
	return out
}
