package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/learnora/learnora/internal/db"
)

const (
	defaultVectorField = "embedding"
	// scoreField is the alias FT.SEARCH gives the KNN distance.
	scoreField = "__vector_score"
)

// SearchKNN runs FT.SEARCH with a KNN clause. Entry scores are raw distances of the index metric.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	args, err := knnArgs(q)
	if err != nil {
		return nil, err
	}

	reply, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	switch {
	case err == nil:
		return parseKNNReply(reply)
	case isRedisErr(err, "no such index"), isRedisErr(err, errUnknownIndex):
		return nil, db.ErrIndexNotFound
	default:
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
}

// knnArgs renders "<index> *=>[KNN k @field $BLOB] ..." sorted by ascending distance.
func knnArgs(q *db.KNNQuery) ([]string, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case len(q.Vector) == 0:
		return nil, errors.New("vector is required")
	case q.K <= 0:
		return nil, fmt.Errorf("k must be positive, got %d", q.K)
	}

	field := q.VectorField
	if field == "" {
		field = defaultVectorField
	}
	k := strconv.Itoa(q.K)

	args := []string{q.IndexName, "*=>[KNN " + k + " @" + field + " $BLOB]"}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1), scoreField)
		args = append(args, q.ReturnFields...)
	}
	return append(args,
		"SORTBY", scoreField, "ASC",
		"LIMIT", "0", k,
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	), nil
}

// parseKNNReply reads the RESP2 shape [total, key1, [f, v, ...], key2, [...], ...].
// Malformed hits are skipped.
func parseKNNReply(reply []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(reply) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	hits := reply[1:]
	out := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, len(hits)/2)}
	for i := 0; i+1 < len(hits); i += 2 {
		key, err := hits[i].ToString()
		if err != nil {
			continue
		}
		fields, err := hits[i+1].AsStrMap()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if raw, ok := fields[scoreField]; ok {
			entry.Score, _ = strconv.ParseFloat(raw, 64)
			delete(fields, scoreField)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// vectorToBytes encodes v as little-endian FLOAT32, the layout FT vector fields expect.
func vectorToBytes(v []float32) string {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return string(buf)
}
