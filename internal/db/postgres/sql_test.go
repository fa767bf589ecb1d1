package postgres

import (
	"strings"
	"testing"

	"github.com/learnora/learnora/internal/db"
)

func TestTableIdent(t *testing.T) {
	tests := map[string]string{
		"learnora:resources:idx": `"learnora_resources_idx"`,
		"a-b":                    `"a_b"`,
		"plain":                  `"plain"`,
	}
	for in, want := range tests {
		if got := tableIdent(in); got != want {
			t.Errorf("tableIdent(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCreateStatements(t *testing.T) {
	def := db.NewIndex("learnora:resources:idx").
		Prefix("learnora:resource:").
		Tag("source").
		Vector("embedding", 1536, db.DistanceL2, db.HNSW(16, 200)).
		MustBuild()

	stmts, err := createStatements(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0], "CREATE EXTENSION IF NOT EXISTS vector") {
		t.Errorf("missing extension: %s", stmts[0])
	}
	if !strings.Contains(stmts[1], `"learnora_resources_idx"`) || !strings.Contains(stmts[1], "vector(1536)") {
		t.Errorf("unexpected table DDL: %s", stmts[1])
	}
	want := `CREATE INDEX "learnora_resources_idx_embedding_hnsw" ON "learnora_resources_idx" ` +
		`USING hnsw (embedding vector_l2_ops) WITH (m = 16, ef_construction = 200)`
	if stmts[2] != want {
		t.Errorf("index DDL =\n%s\nwant\n%s", stmts[2], want)
	}
}

func TestCreateStatements_CosineWithoutParams(t *testing.T) {
	def := db.NewIndex("idx").Vector("embedding", 8, db.DistanceCosine, db.Flat(0)).MustBuild()

	stmts, err := createStatements(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(stmts[2], "(embedding vector_cosine_ops)") {
		t.Errorf("unexpected index DDL: %s", stmts[2])
	}
}

func TestCreateStatements_Invalid(t *testing.T) {
	if _, err := createStatements(&db.IndexDefinition{Name: "idx"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestKNNSQL(t *testing.T) {
	got, err := knnSQL("learnora:resources:idx", db.DistanceL2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT key, fields, (embedding <-> $1) ^ 2 AS distance FROM "learnora_resources_idx" ` +
		`ORDER BY embedding <-> $1 LIMIT $2`
	if got != want {
		t.Errorf("knnSQL =\n%s\nwant\n%s", got, want)
	}

	if got, _ := knnSQL("idx", ""); !strings.Contains(got, "(embedding <-> $1) ^ 2 AS distance") {
		t.Errorf("empty metric should default to squared L2: %s", got)
	}
	if got, _ := knnSQL("idx", db.DistanceIP); !strings.Contains(got, "embedding <#> $1 AS distance") {
		t.Errorf("inner product distance must not be squared: %s", got)
	}
	if got, _ := knnSQL("idx", db.DistanceCosine); strings.Contains(got, "^ 2") {
		t.Errorf("cosine distance must not be squared: %s", got)
	}
	if _, err := knnSQL("idx", db.DistanceMetric("HAMMING")); err == nil {
		t.Error("expected error for unsupported metric")
	}
	if _, err := knnSQL("", db.DistanceL2); err == nil {
		t.Error("expected error for empty index")
	}
}

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL("learnora:resources:idx")
	if !strings.HasPrefix(got, `INSERT INTO "learnora_resources_idx"`) || !strings.Contains(got, "ON CONFLICT (key) DO UPDATE") {
		t.Errorf("unexpected upsert SQL: %s", got)
	}
}

func TestProject(t *testing.T) {
	fields := map[string]string{"title": "t", "link": "l", "source": "s"}

	if got := project(fields, nil); len(got) != 3 {
		t.Errorf("no selection should keep all fields, got %v", got)
	}
	got := project(fields, []string{"title", "missing"})
	if len(got) != 1 || got["title"] != "t" {
		t.Errorf("unexpected projection: %v", got)
	}
}

func TestNewStore_RequiresDSN(t *testing.T) {
	if _, err := NewStore(t.Context(), Config{}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
