package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"medicalbot/internal/config"
	"medicalbot/internal/embedding"
	"medicalbot/internal/helper"
	"medicalbot/internal/models"
)

type Document struct {
	bun.BaseModel  `bun:"table:documents,alias:d"`
	ID             string          `bun:"id,pk"`
	IndexName      string          `bun:"index_name,notnull"`
	Content        string          `bun:"content,notnull"`
	SourceFilename string          `bun:"source_filename"`
	PageNumber     int             `bun:"page_number"`
	ChunkID        int             `bun:"chunk_id"`
	Embedding      pgvector.Vector `bun:"embedding,notnull"`
	Score          float32         `bun:"score,scanonly"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens a connection pool with either bun's pgdriver or lib/pq.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is not set")
	}
	switch cfg.Driver {
	case "pgdriver", "":
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), nil
	case "postgres":
		return sql.Open("postgres", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// InitDB creates the vector extension, the documents table and its HNSW index.
func InitDB(ctx context.Context, db *bun.DB, vectorSize int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
	id text PRIMARY KEY,
	index_name text NOT NULL,
	content text NOT NULL,
	source_filename text,
	page_number integer,
	chunk_id integer,
	embedding vector(%d) NOT NULL
)`, vectorSize),
		`CREATE INDEX IF NOT EXISTS documents_embedding_idx ON documents USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS documents_index_name_idx ON documents (index_name)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func StoreDocuments(ctx context.Context, db *bun.DB, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&docs).
		On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("source_filename = EXCLUDED.source_filename").
		Set("page_number = EXCLUDED.page_number").
		Set("chunk_id = EXCLUDED.chunk_id").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	return err
}

// SearchDocuments orders by cosine distance; Score is cosine similarity.
func SearchDocuments(ctx context.Context, db *bun.DB, indexName string, queryEmbedding []float32, limit int) ([]Document, error) {
	vec := pgvector.NewVector(queryEmbedding)
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "content", "source_filename", "page_number", "chunk_id").
		ColumnExpr("1 - (embedding <=> ?) AS score", vec).
		Where("index_name = ?", indexName).
		OrderExpr("embedding <=> ?", vec).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

func DropDocuments(ctx context.Context, db *bun.DB, indexName string) error {
	_, err := db.NewDelete().Model((*Document)(nil)).Where("index_name = ?", indexName).Exec(ctx)
	return err
}

// Store is a pgvector-backed langchaingo vector store scoped to one index name.
type Store struct {
	db        *bun.DB
	embedder  embeddings.Embedder
	indexName string
	dimension int
	batchSize int
}

var _ vectorstores.VectorStore = (*Store)(nil)

func NewStore(db *bun.DB, embedder embeddings.Embedder, indexName string, dimension, batchSize int) *Store {
	return &Store{db: db, embedder: embedder, indexName: indexName, dimension: dimension, batchSize: batchSize}
}

func (s *Store) EnsureIndex(ctx context.Context) error {
	return InitDB(ctx, s.db, s.dimension)
}

func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}
	vectors, err := embedding.EmbedBatches(ctx, s.embedder, texts, s.batchSize)
	if err != nil {
		return nil, err
	}

	rows := make([]Document, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		if len(vectors[i]) != s.dimension {
			return nil, fmt.Errorf("vector dimension %d does not match index dimension %d", len(vectors[i]), s.dimension)
		}
		ids[i] = helper.DocumentID(d.Metadata)
		rows[i] = Document{
			ID:             ids[i],
			IndexName:      s.indexName,
			Content:        d.PageContent,
			SourceFilename: helper.MetaString(d.Metadata, models.MetaSource),
			PageNumber:     helper.MetaInt(d.Metadata, models.MetaPage),
			ChunkID:        helper.MetaInt(d.Metadata, models.MetaChunk),
			Embedding:      pgvector.NewVector(vectors[i]),
		}
	}
	if err := StoreDocuments(ctx, s.db, rows); err != nil {
		return nil, fmt.Errorf("store documents: %w", err)
	}
	log.Debug().Int("count", len(rows)).Str("index", s.indexName).Msg("Stored documents")
	return ids, nil
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, o := range options {
		o(&opts)
	}
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := SearchDocuments(ctx, s.db, s.indexName, queryEmbedding, numDocuments)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	docs := make([]schema.Document, 0, len(rows))
	for _, r := range rows {
		if opts.ScoreThreshold > 0 && r.Score < opts.ScoreThreshold {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: r.Content,
			Metadata: map[string]any{
				"id":              r.ID,
				models.MetaSource: r.SourceFilename,
				models.MetaPage:   r.PageNumber,
				models.MetaChunk:  r.ChunkID,
			},
			Score: r.Score,
		})
	}
	return docs, nil
}

func (s *Store) Reset(ctx context.Context) error {
	return DropDocuments(ctx, s.db, s.indexName)
}

func (s *Store) Close() error {
	return s.db.Close()
}
