package vectorstore

import (
	"context"
	"testing"

	"github.com/tmc/langchaingo/schema"

	"medicalbot/internal/config"
	"medicalbot/internal/helper"
	"medicalbot/internal/models"
)

type zeroEmbedder struct{}

func (zeroEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (zeroEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestOpenInMemoryChromem(t *testing.T) {
	cfg := &config.Config{VectorStore: config.VectorStoreConfig{
		Type: "chromem", IndexName: "medicalbot", Dimension: 3, InMemory: true,
	}}
	s, err := Open(context.Background(), cfg, zeroEmbedder{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	docs, err := s.SimilaritySearch(context.Background(), "anything", 3)
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty search, got %v %v", docs, err)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	cfg := &config.Config{VectorStore: config.VectorStoreConfig{Type: "faiss"}}
	if _, err := Open(context.Background(), cfg, zeroEmbedder{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenPineconeRequiresCredentials(t *testing.T) {
	cfg := &config.Config{VectorStore: config.VectorStoreConfig{Type: "pinecone"}}
	if _, err := Open(context.Background(), cfg, zeroEmbedder{}); err == nil {
		t.Fatal("expected error without api key and host")
	}
}

func TestPineconeVectorsUseChunkIDs(t *testing.T) {
	docs := []schema.Document{
		{PageContent: "Acne is common.", Metadata: map[string]any{models.MetaSource: "a.pdf", models.MetaPage: 2, models.MetaChunk: 1}},
		{PageContent: "Dermatitis is inflammation.", Metadata: map[string]any{"id": "fixed", models.MetaSource: "a.pdf", models.MetaPage: 2, models.MetaChunk: 2}},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}}

	first, ids, err := pineconeVectors(docs, vectors, 3)
	if err != nil {
		t.Fatalf("pineconeVectors: %v", err)
	}
	again, _, err := pineconeVectors(docs, vectors, 3)
	if err != nil {
		t.Fatalf("pineconeVectors: %v", err)
	}
	if ids[0] != helper.ChunkUUID("a.pdf", 2, 1) || ids[1] != "fixed" {
		t.Fatalf("unexpected ids %v", ids)
	}
	for i := range first {
		if first[i].Id != again[i].Id || first[i].Id != ids[i] {
			t.Fatalf("ids must be stable across runs: %s vs %s", first[i].Id, again[i].Id)
		}
	}
	meta := first[0].Metadata.AsMap()
	if meta[textKey] != "Acne is common." || meta[models.MetaSource] != "a.pdf" || meta[models.MetaPage] != float64(2) {
		t.Fatalf("unexpected metadata %#v", meta)
	}
	if _, ok := docs[0].Metadata[textKey]; ok {
		t.Fatal("input metadata must not be modified")
	}
}

func TestPineconeVectorsRejectWrongDimension(t *testing.T) {
	docs := []schema.Document{{PageContent: "x", Metadata: map[string]any{models.MetaSource: "a.pdf"}}}
	if _, _, err := pineconeVectors(docs, [][]float32{{1, 0}}, 3); err == nil {
		t.Fatal("expected dimension mismatch")
	}
	if _, _, err := pineconeVectors(docs, nil, 3); err == nil {
		t.Fatal("expected count mismatch")
	}
}
