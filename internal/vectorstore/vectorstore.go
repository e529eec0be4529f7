// Package vectorstore opens the configured vector index behind langchaingo's
// VectorStore interface.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"

	"medicalbot/internal/chromemdb"
	"medicalbot/internal/config"
	"medicalbot/internal/db"
)

// Store is a vector index that can also be emptied and released.
type Store interface {
	vectorstores.VectorStore
	Reset(ctx context.Context) error
	Close() error
}

// Open connects to (and for local backends provisions) the index named in cfg.
func Open(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (Store, error) {
	vs := cfg.VectorStore
	log.Info().Str("type", vs.Type).Str("index", vs.IndexName).Int("dimension", vs.Dimension).Msg("Opening vector store")

	switch vs.Type {
	case "chromem":
		m, err := chromemdb.NewVectorDBManager(chromemdb.Options{
			DBPath:         vs.Path,
			CollectionName: vs.IndexName,
			InMemory:       vs.InMemory,
			EncryptionKey:  vs.EncryptionKey,
			Dimension:      vs.Dimension,
			BatchSize:      cfg.Ingest.BatchSize,
		}, embedder)
		if err != nil {
			return nil, err
		}
		if vs.InMemory && vs.EncryptionKey != "" {
			if err := m.Import(ctx); err != nil {
				log.Warn().Err(err).Msg("No exported collection imported")
			}
		}
		return m, nil

	case "pgvector":
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s := db.NewStore(db.NewDB(sqldb, cfg.Database.Debug), embedder, vs.IndexName, vs.Dimension, cfg.Ingest.BatchSize)
		if err := s.EnsureIndex(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil

	case "pinecone":
		if vs.Pinecone.APIKey == "" || vs.Pinecone.Host == "" {
			return nil, fmt.Errorf("pinecone requires %s and vector_store.pinecone.host", config.EnvPineconeKey)
		}
		p, err := newPineconeStore(vs, embedder, cfg.Ingest.BatchSize)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported vector store: %s", vs.Type)
	}
}
