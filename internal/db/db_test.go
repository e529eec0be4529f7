package db

import (
	"context"
	"os"
	"testing"

	"github.com/tmc/langchaingo/schema"

	"medicalbot/internal/config"
	"medicalbot/internal/models"
)

type constEmbedder struct{ dim int }

func (c constEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = c.EmbedQuery(ctx, t)
	}
	return out, nil
}

func (c constEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, c.dim)
	v[len(text)%c.dim] = 1
	return v, nil
}

func TestConnectDBValidation(t *testing.T) {
	if _, err := ConnectDB(&config.DatabaseConfig{}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
	if _, err := ConnectDB(&config.DatabaseConfig{DSN: "postgres://x", Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx := context.Background()
	sqldb, err := ConnectDB(&config.DatabaseConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	store := NewStore(NewDB(sqldb, false), constEmbedder{dim: 8}, "medicalbot-test", 8, 4)
	defer store.Close()

	if err := store.EnsureIndex(ctx); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	docs := []schema.Document{
		{PageContent: "abc", Metadata: map[string]any{models.MetaSource: "a.pdf", models.MetaPage: 1, models.MetaChunk: 1}},
		{PageContent: "abcdef", Metadata: map[string]any{models.MetaSource: "a.pdf", models.MetaPage: 1, models.MetaChunk: 2}},
	}
	if _, err := store.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	got, err := store.SimilaritySearch(ctx, "xyz", 1)
	if err != nil {
		t.Fatalf("SimilaritySearch: %v", err)
	}
	if len(got) != 1 || got[0].PageContent != "abc" {
		t.Fatalf("unexpected results: %+v", got)
	}
}
