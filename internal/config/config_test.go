package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvTogetherKey, "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.VectorStore.IndexName != "medicalbot" || cfg.VectorStore.Dimension != 384 {
		t.Fatalf("unexpected vector store defaults: %+v", cfg.VectorStore)
	}
	if cfg.RAG.TopK != 3 || cfg.RAG.HistoryWindow != 10 {
		t.Fatalf("unexpected rag defaults: %+v", cfg.RAG)
	}
	if cfg.LLM.SamplingTemperature() != 0.5 || cfg.LLM.MaxTokens != 512 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if len(cfg.RAG.Denylist) != 5 {
		t.Fatalf("expected 5 denylisted phrases, got %d", len(cfg.RAG.Denylist))
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9000"
session:
  ttl: 1h
llm:
  key: from-file
embedding:
  provider: ollama
rag:
  retrieval_query: history
  denylist: ["foo"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvTogetherKey, "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Session.TTL != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", cfg.Session.TTL)
	}
	if cfg.LLM.Key != "from-env" {
		t.Fatalf("expected env key to win, got %q", cfg.LLM.Key)
	}
	if cfg.EmbedLLM.Model != "all-minilm" || cfg.EmbedLLM.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected ollama defaults: %+v", cfg.EmbedLLM)
	}
	if cfg.RAG.RetrievalQuery != "history" || len(cfg.RAG.Denylist) != 1 {
		t.Fatalf("unexpected rag config: %+v", cfg.RAG)
	}
}

func TestLoadConfigKeepsZeroTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  temperature: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.Temperature == nil || *cfg.LLM.Temperature != 0 {
		t.Fatalf("expected explicit zero temperature, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.SamplingTemperature() != 0 {
		t.Fatalf("expected sampling temperature 0, got %v", cfg.LLM.SamplingTemperature())
	}
}

func TestValidateRejectsBadRetrievalQuery(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.RAG.RetrievalQuery = "everything"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown retrieval query mode")
	}
}

func TestValidateRejectsOverlapLargerThanChunk(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Ingest.ChunkOverlap = cfg.Ingest.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}
