package helper

import (
	"testing"

	"github.com/google/uuid"

	"medicalbot/internal/models"
)

func TestGenerateUUIDIsRandom(t *testing.T) {
	a, err := GenerateUUID()
	if err != nil {
		t.Fatalf("GenerateUUID: %v", err)
	}
	b, _ := GenerateUUID()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	id, err := uuid.Parse(a)
	if err != nil || id.Version() != 4 {
		t.Fatalf("expected a version 4 uuid, got %q (%v)", a, err)
	}
}

func TestChunkUUIDIsStable(t *testing.T) {
	a := ChunkUUID("Data/book.pdf", 3, 1)
	b := ChunkUUID("Data/book.pdf", 3, 1)
	c := ChunkUUID("Data/book.pdf", 3, 2)
	if a != b {
		t.Fatalf("expected stable id, got %s and %s", a, b)
	}
	if a == c {
		t.Fatal("different chunks must not share an id")
	}
}

func TestDocumentIDPrefersExplicitID(t *testing.T) {
	meta := map[string]any{"id": "fixed", models.MetaSource: "x"}
	if got := DocumentID(meta); got != "fixed" {
		t.Fatalf("got %q", got)
	}
	derived := DocumentID(map[string]any{models.MetaSource: "x", models.MetaPage: 2, models.MetaChunk: 1})
	if derived != ChunkUUID("x", 2, 1) {
		t.Fatalf("unexpected derived id %q", derived)
	}
}

func TestMetadataRoundTripKeepsNumbers(t *testing.T) {
	in := map[string]any{models.MetaSource: "a.pdf", models.MetaPage: 4, models.MetaChunk: 2}
	out := AnyMetadata(StringMetadata(in))
	if out[models.MetaPage] != 4 || out[models.MetaChunk] != 2 || out[models.MetaSource] != "a.pdf" {
		t.Fatalf("unexpected metadata: %#v", out)
	}
}
