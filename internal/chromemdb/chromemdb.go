package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"medicalbot/internal/embedding"
	"medicalbot/internal/helper"
)

// Options configures a VectorDBManager.
type Options struct {
	DBPath         string
	CollectionName string
	InMemory       bool
	EncryptionKey  string
	Dimension      int
	BatchSize      int
}

// VectorDBManager wraps a chromem-go collection as a langchaingo vector store.
// Similarity is cosine; chromem normalizes vectors on insert and query.
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embedder      embeddings.Embedder
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
	dimension     int
	batchSize     int
}

var _ vectorstores.VectorStore = (*VectorDBManager)(nil)

const (
	compress = false
)

// NewVectorDBManager opens (or creates) the database and the named collection.
func NewVectorDBManager(opts Options, embedder embeddings.Embedder) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if opts.InMemory {
		db = chromem.NewDB()
	} else {
		if err := helper.CreateFolder(opts.DBPath); err != nil {
			return nil, fmt.Errorf("failed to create database folder: %w", err)
		}
		db, err = chromem.NewPersistentDB(opts.DBPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	m := &VectorDBManager{
		db:            db,
		embedder:      embedder,
		dbPath:        opts.DBPath,
		compress:      compress,
		encryptionKey: opts.EncryptionKey,
		filePath:      filepath.Join(opts.DBPath, opts.CollectionName+".chromem"),
		dimension:     opts.Dimension,
		batchSize:     opts.BatchSize,
	}
	if _, err := m.GetOrCreateCollection(opts.CollectionName); err != nil {
		return nil, err
	}
	return m, nil
}

// GetOrCreateCollection selects the named collection, creating it if needed.
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	metadata := map[string]string{
		"metric":    "cosine",
		"dimension": fmt.Sprint(m.dimension),
	}
	c, err := m.db.GetOrCreateCollection(collectionName, metadata, m.embedder.EmbedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// Count returns the number of stored chunks.
func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// AddDocuments embeds docs and upserts them. Ids come from the "id" metadata key
// or are derived from source/page/chunk.
func (m *VectorDBManager) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}
	vectors, err := embedding.EmbedBatches(ctx, m.embedder, texts, m.batchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		if err := m.checkDimension(vectors[i]); err != nil {
			return nil, err
		}
		ids[i] = helper.DocumentID(d.Metadata)
		chromemDocs[i] = chromem.Document{
			ID:        ids[i],
			Content:   d.PageContent,
			Metadata:  helper.StringMetadata(d.Metadata),
			Embedding: vectors[i],
		}
	}

	if err := m.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}
	return ids, nil
}

// SimilaritySearch returns up to numDocuments chunks closest to query.
func (m *VectorDBManager) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, o := range options {
		o(&opts)
	}

	queryEmbedding, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := m.checkDimension(queryEmbedding); err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection
	n := min(numDocuments, m.collection.Count())
	if n <= 0 {
		log.Warn().Str("collection", m.collection.Name).Msg("Similarity search on empty collection")
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, queryEmbedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		if opts.ScoreThreshold > 0 && r.Similarity < opts.ScoreThreshold {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: r.Content,
			Metadata:    helper.AnyMetadata(r.Metadata),
			Score:       r.Similarity,
		})
	}
	return docs, nil
}

func (m *VectorDBManager) checkDimension(v []float32) error {
	if m.dimension > 0 && len(v) != m.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), m.dimension)
	}
	return nil
}

// Reset drops the collection and recreates it empty.
func (m *VectorDBManager) Reset(_ context.Context) error {
	name := m.collection.Name
	if err := m.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	_, err := m.GetOrCreateCollection(name)
	return err
}

// Export writes the collection to an encrypted file next to the database.
func (m *VectorDBManager) Export(_ context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", m.filePath).
		Bool("compress", m.compress).
		Msg("Exporting collection")
	if err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import loads the collection from the file written by Export.
func (m *VectorDBManager) Import(_ context.Context) error {
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	c := m.db.GetCollection(m.collection.Name, m.embedder.EmbedQuery)
	if c != nil {
		m.collection = c
	}
	return nil
}

func (m *VectorDBManager) Close() error { return nil }
