package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultTemperature = 0.5

// Credential environment variables. Values found in the environment (or in .env)
// take precedence over the YAML file.
const (
	EnvPineconeKey    = "PINECONE_API_KEY"
	EnvHuggingFaceKey = "HUGGINGFACEHUB_API_TOKEN"
	EnvTogetherKey    = "TOGETHER_API_KEY"
)

type Config struct {
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
	Session     SessionConfig     `yaml:"session"`
	LLM         LLMConfig         `yaml:"llm"`
	EmbedLLM    EmbedConfig       `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Database    DatabaseConfig    `yaml:"database"`
	RAG         RAGConfig         `yaml:"rag"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type SessionConfig struct {
	// Store is "memory" or "redis".
	Store      string        `yaml:"store"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Secure     bool          `yaml:"secure"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LLMConfig describes an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Key         string   `yaml:"key"`
	Model       string   `yaml:"model"`
	// Temperature is nil when unset; an explicit 0 is kept.
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// SamplingTemperature returns the configured temperature or the default.
func (c *LLMConfig) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

type EmbedConfig struct {
	// Provider is one of "huggingface", "ollama" or "openai".
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type VectorStoreConfig struct {
	// Type is one of "chromem", "pgvector" or "pinecone".
	Type          string         `yaml:"type"`
	IndexName     string         `yaml:"index_name"`
	Dimension     int            `yaml:"dimension"`
	Path          string         `yaml:"path"`
	InMemory      bool           `yaml:"in_memory"`
	EncryptionKey string         `yaml:"encryption_key"`
	Pinecone      PineconeConfig `yaml:"pinecone"`
}

type PineconeConfig struct {
	APIKey    string `yaml:"api_key"`
	Host      string `yaml:"host"`
	Namespace string `yaml:"namespace"`
}

type DatabaseConfig struct {
	// Driver is "pgdriver" (bun native) or "postgres" (lib/pq).
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Debug  bool   `yaml:"debug"`
}

type RAGConfig struct {
	TopK           int           `yaml:"top_k"`
	HistoryWindow  int           `yaml:"history_window"`
	// RetrievalQuery is "latest" or "history".
	RetrievalQuery string        `yaml:"retrieval_query"`
	Timeout        time.Duration `yaml:"timeout"`
	Denylist       []string      `yaml:"denylist"`
}

type IngestConfig struct {
	DataDir      string `yaml:"data_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	BatchSize    int    `yaml:"batch_size"`
}

// LoadConfig reads the YAML file at path, loads .env into the process environment
// and applies defaults. A missing file yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvTogetherKey); v != "" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv(EnvPineconeKey); v != "" {
		cfg.VectorStore.Pinecone.APIKey = v
	}
	if v := os.Getenv(EnvHuggingFaceKey); v != "" && cfg.EmbedLLM.Provider != "openai" {
		cfg.EmbedLLM.Key = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "medicalbot_session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 31 * 24 * time.Hour
	}
	if cfg.Session.MaxEntries == 0 {
		cfg.Session.MaxEntries = 100
	}
	if cfg.Session.Redis.Prefix == "" {
		cfg.Session.Redis.Prefix = "medicalbot"
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.together.xyz/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "mistralai/Mixtral-8x7B-Instruct-v0.1"
	}
	if cfg.LLM.Temperature == nil {
		t := DefaultTemperature
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}

	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "huggingface"
	}
	if cfg.EmbedLLM.Model == "" {
		switch cfg.EmbedLLM.Provider {
		case "ollama":
			cfg.EmbedLLM.Model = "all-minilm"
		case "openai":
			cfg.EmbedLLM.Model = "text-embedding-3-small"
		default:
			cfg.EmbedLLM.Model = "sentence-transformers/all-MiniLM-L6-v2"
		}
	}
	if cfg.EmbedLLM.BaseURL == "" && cfg.EmbedLLM.Provider == "ollama" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chromem"
	}
	if cfg.VectorStore.IndexName == "" {
		cfg.VectorStore.IndexName = "medicalbot"
	}
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = 384
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "./chromemdb"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgdriver"
	}

	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.RAG.HistoryWindow == 0 {
		cfg.RAG.HistoryWindow = 10
	}
	if cfg.RAG.RetrievalQuery == "" {
		cfg.RAG.RetrievalQuery = "latest"
	}
	if cfg.RAG.Denylist == nil {
		cfg.RAG.Denylist = DefaultDenylist()
	}
	if cfg.Session.MaxEntries < cfg.RAG.HistoryWindow {
		cfg.Session.MaxEntries = cfg.RAG.HistoryWindow
	}

	if cfg.Ingest.DataDir == "" {
		cfg.Ingest.DataDir = "Data/"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 500
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 20
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 32
	}
}

// Validate reports settings that can never work.
func (c *Config) Validate() error {
	switch c.RAG.RetrievalQuery {
	case "latest", "history":
	default:
		return fmt.Errorf("rag.retrieval_query must be latest or history, got %q", c.RAG.RetrievalQuery)
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	if c.VectorStore.Dimension < 0 {
		return fmt.Errorf("vector_store.dimension must be positive")
	}
	return nil
}

// DefaultDenylist returns the phrases scrubbed from generated answers.
func DefaultDenylist() []string {
	return []string{
		"Acne is not mentioned in the provided context",
		"Based on the provided context",
		"The text provided discusses",
		"The provided context discusses treatments for contact dermatitis, not acne.",
		"Based on the context provided, it is not possible to make a definitive diagnosis about your condition.",
	}
}
