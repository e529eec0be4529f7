package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medicalbot/internal/chromemdb"
)

type hashEmbedder struct{ dim int }

func (h hashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = h.EmbedQuery(ctx, t)
	}
	return out, nil
}

func (h hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, h.dim)
	for i, r := range text {
		v[(int(r)+i)%h.dim] += 1
	}
	v[0] += 0.5
	return v, nil
}

func setup(t *testing.T) (string, *chromemdb.VectorDBManager) {
	t.Helper()
	dir := t.TempDir()
	body := strings.Repeat("Eczema causes dry and itchy skin. ", 30)
	if err := os.WriteFile(filepath.Join(dir, "skin.txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := chromemdb.NewVectorDBManager(chromemdb.Options{
		CollectionName: "medicalbot", InMemory: true, Dimension: 16, BatchSize: 4,
	}, hashEmbedder{dim: 16})
	if err != nil {
		t.Fatalf("NewVectorDBManager: %v", err)
	}
	return dir, store
}

func TestRunStoresChunks(t *testing.T) {
	dir, store := setup(t)
	opts := Options{DataDir: dir, ChunkSize: 200, ChunkOverlap: 20, Dimension: 16}

	res, err := Run(context.Background(), opts, hashEmbedder{dim: 16}, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Pages != 1 || len(res.Chunks) < 2 || res.Stored != len(res.Chunks) {
		t.Fatalf("unexpected result: pages=%d chunks=%d stored=%d", res.Pages, len(res.Chunks), res.Stored)
	}
	if store.Count() != res.Stored {
		t.Fatalf("store has %d docs, expected %d", store.Count(), res.Stored)
	}

	// running again with recreate keeps the same number of chunks
	opts.Recreate = true
	if _, err := Run(context.Background(), opts, hashEmbedder{dim: 16}, store); err != nil {
		t.Fatalf("Run recreate: %v", err)
	}
	if store.Count() != res.Stored {
		t.Fatalf("expected %d docs after recreate, got %d", res.Stored, store.Count())
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir, store := setup(t)
	res, err := Run(context.Background(), Options{DataDir: dir, ChunkSize: 200, ChunkOverlap: 20, DryRun: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Chunks) == 0 || res.Stored != 0 || store.Count() != 0 {
		t.Fatalf("dry run must not store: %+v", res)
	}
}

func TestRunFailsOnDimensionMismatch(t *testing.T) {
	dir, store := setup(t)
	opts := Options{DataDir: dir, ChunkSize: 200, ChunkOverlap: 20, Dimension: 384}
	if _, err := Run(context.Background(), opts, hashEmbedder{dim: 16}, store); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if store.Count() != 0 {
		t.Fatal("nothing should be written on mismatch")
	}
}
