package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/learnora/learnora/internal/db"
)

// distanceOps maps a metric to its pgvector operator and HNSW operator class.
var distanceOps = map[db.DistanceMetric]struct {
	operator string
	opclass  string
}{
	db.DistanceL2:     {"<->", "vector_l2_ops"},
	db.DistanceCosine: {"<=>", "vector_cosine_ops"},
	db.DistanceIP:     {"<#>", "vector_ip_ops"},
}

func operatorFor(metric db.DistanceMetric) (string, string, error) {
	if metric == "" {
		metric = db.DistanceL2
	}
	ops, ok := distanceOps[metric]
	if !ok {
		return "", "", fmt.Errorf("unsupported distance metric %q", metric)
	}
	return ops.operator, ops.opclass, nil
}

// createStatements renders the DDL for def. Tag and numeric fields live in
// the JSONB column and need no columns of their own.
func createStatements(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	vf, _ := def.VectorField()
	_, opclass, err := operatorFor(vf.Vector.Distance)
	if err != nil {
		return nil, err
	}

	table := tableIdent(def.Name)
	index := pgx.Identifier{strings.Trim(table, `"`) + "_embedding_hnsw"}.Sanitize()

	var with []string
	if vf.Vector.M > 0 {
		with = append(with, "m = "+strconv.Itoa(vf.Vector.M))
	}
	if vf.Vector.EFConstruct > 0 {
		with = append(with, "ef_construction = "+strconv.Itoa(vf.Vector.EFConstruct))
	}
	hnsw := fmt.Sprintf("CREATE INDEX %s ON %s USING hnsw (embedding %s)", index, table, opclass)
	if len(with) > 0 {
		hnsw += " WITH (" + strings.Join(with, ", ") + ")"
	}

	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf("CREATE TABLE %s (key text PRIMARY KEY, fields jsonb NOT NULL, embedding vector(%d) NOT NULL)",
			table, vf.Vector.Dim),
		hnsw,
	}, nil
}

func upsertSQL(index string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (key, fields, embedding) VALUES ($1, $2, $3) "+
			"ON CONFLICT (key) DO UPDATE SET fields = EXCLUDED.fields, embedding = EXCLUDED.embedding",
		tableIdent(index))
}

func knnSQL(index string, metric db.DistanceMetric) (string, error) {
	if index == "" {
		return "", errors.New("index name is required")
	}
	op, _, err := operatorFor(metric)
	if err != nil {
		return "", err
	}
	// pgvector's <-> is the plain Euclidean distance while FT.SEARCH reports it squared.
	distance := "embedding " + op + " $1"
	if metric == "" || metric == db.DistanceL2 {
		distance = "(" + distance + ") ^ 2"
	}
	return fmt.Sprintf(
		"SELECT key, fields, %[3]s AS distance FROM %[1]s ORDER BY embedding %[2]s $1 LIMIT $2",
		tableIdent(index), op, distance), nil
}
