package render

import (
	"strings"
	"testing"
)

func TestMarkdownBoldAndList(t *testing.T) {
	got, err := Markdown("**Recovery**\n\n- rest\n- fluids")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	for _, want := range []string{"<strong>Recovery</strong>", "<li>rest</li>", "<ul>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	got, err := Markdown("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw html leaked: %q", got)
	}
}
