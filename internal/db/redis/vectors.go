package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/learnora/learnora/internal/db"
)

// UpsertVectors writes every record as one hash (scalar fields plus the
// encoded vector) in a single DoMulti round-trip. Keys must carry one of
// the index prefixes or FT will not pick them up.
func (s *Store) UpsertVectors(ctx context.Context, def *db.IndexDefinition, records []db.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	vf, ok := def.VectorField()
	if !ok {
		return errors.New("index has no vector field")
	}

	cmds := make([]rueidis.Completed, 0, len(records))
	for _, rec := range records {
		if !hasPrefix(rec.Key, def.Prefixes) {
			return fmt.Errorf("key %q outside index prefixes %v", rec.Key, def.Prefixes)
		}
		if len(rec.Vector) != vf.Vector.Dim {
			return fmt.Errorf("key %q: vector has %d dimensions, index expects %d", rec.Key, len(rec.Vector), vf.Vector.Dim)
		}

		cmd := s.b().Hset().Key(rec.Key).FieldValue()
		for k, v := range rec.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmd = cmd.FieldValue(vf.Name, vectorToBytes(rec.Vector))
		cmds = append(cmds, cmd.Build())
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpWrite, Err: fmt.Errorf("key %s: %w", records[i].Key, err)}
		}
	}
	return nil
}

func hasPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
