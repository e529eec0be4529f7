package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medicalbot/internal/models"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDirSkipsUnsupportedAndNested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "Dermatitis is inflammation of the skin.")
	writeFile(t, filepath.Join(dir, "a.md"), "Acne is common.")
	writeFile(t, filepath.Join(dir, "image.png"), "not text")
	writeFile(t, filepath.Join(dir, "empty.txt"), "   \n")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "Flu is viral.")

	pages, err := LoadDir(dir, false)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %+v", len(pages), pages)
	}
	if filepath.Base(pages[0].Source) != "a.md" || pages[0].PageNumber != 1 {
		t.Fatalf("expected a.md first, got %+v", pages[0])
	}

	pages, err = LoadDir(dir, true)
	if err != nil {
		t.Fatalf("LoadDir recursive: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages with recursion, got %d", len(pages))
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	if _, err := LoadFile("notes.rtf"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSplitKeepsMetadataAndSize(t *testing.T) {
	text := strings.Repeat("Acne vulgaris is a long-term skin condition. ", 40)
	pages := []models.Page{
		{Source: "Data/book.pdf", PageNumber: 7, Content: text},
		{Source: "Data/book.pdf", PageNumber: 8, Content: "Short page."},
	}
	docs, err := Split(pages, 200, 20)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(docs) < 3 {
		t.Fatalf("expected several chunks, got %d", len(docs))
	}
	ids := map[string]bool{}
	for _, d := range docs {
		if len(d.PageContent) > 200 {
			t.Fatalf("chunk exceeds size: %d", len(d.PageContent))
		}
		id := d.Metadata["id"].(string)
		if ids[id] {
			t.Fatalf("duplicate chunk id %s", id)
		}
		ids[id] = true
	}
	first, last := docs[0], docs[len(docs)-1]
	if first.Metadata[models.MetaPage] != 7 || first.Metadata[models.MetaChunk] != 1 {
		t.Fatalf("unexpected first metadata: %#v", first.Metadata)
	}
	if last.Metadata[models.MetaPage] != 8 || last.PageContent != "Short page." {
		t.Fatalf("unexpected last chunk: %#v", last)
	}

	chunks := Chunks(docs)
	if chunks[0].Source != "Data/book.pdf" || chunks[0].PageNumber != 7 || chunks[0].ID == "" {
		t.Fatalf("unexpected flattened chunk: %+v", chunks[0])
	}
}

func TestStripXMLTags(t *testing.T) {
	in := `<w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p><w:p><w:r><w:t>World</w:t></w:r></w:p></w:body>`
	if got := stripXMLTags(in); got != "Hello\nWorld\n" {
		t.Fatalf("got %q", got)
	}
}
