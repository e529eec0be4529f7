package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	hfembed "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"medicalbot/internal/config"
)

const sampleText = "dimension check"

// New builds the embedder selected by cfg.Provider.
func New(cfg *config.EmbedConfig) (embeddings.Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider": cfg.Provider,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
	}).Msg("Creating embedder")

	switch cfg.Provider {
	case "huggingface":
		return NewHuggingFaceEmbedder(cfg)
	case "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewHuggingFaceEmbedder uses the hosted Hugging Face inference API.
func NewHuggingFaceEmbedder(cfg *config.EmbedConfig) (embeddings.Embedder, error) {
	opts := []huggingface.Option{huggingface.WithModel(cfg.Model)}
	if cfg.Key != "" {
		opts = append(opts, huggingface.WithToken(cfg.Key))
	}
	client, err := huggingface.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init huggingface client: %w", err)
	}
	embedder, err := hfembed.NewHuggingface(
		hfembed.WithClient(*client),
		hfembed.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create huggingface embedder: %w", err)
	}
	return embedder, nil
}

// NewOllamaEmbedder uses a local sentence-embedding model served by ollama.
func NewOllamaEmbedder(cfg *config.EmbedConfig) (embeddings.Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}
	return embedder, nil
}

// NewOpenAIEmbedder targets any OpenAI-compatible embeddings endpoint.
func NewOpenAIEmbedder(cfg *config.EmbedConfig) (embeddings.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return embedder, nil
}

// CheckDimension embeds a sample string and fails when the embedder's output
// length differs from the index dimension.
func CheckDimension(ctx context.Context, embedder embeddings.Embedder, want int) error {
	vec, err := embedder.EmbedQuery(ctx, sampleText)
	if err != nil {
		return fmt.Errorf("sample embedding: %w", err)
	}
	if len(vec) != want {
		return fmt.Errorf("embedding dimension mismatch: model produces %d, index expects %d", len(vec), want)
	}
	log.Debug().Int("dimension", want).Msg("Embedding dimension verified")
	return nil
}

// EmbedBatches embeds texts in groups of batchSize, preserving order.
func EmbedBatches(ctx context.Context, embedder embeddings.Embedder, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		log.Info().Msg("No texts to embed")
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch, err := embedder.EmbedDocuments(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)
		log.Debug().Int("done", end).Int("total", len(texts)).Msg("Embedded batch")
	}
	return vectors, nil
}
