// Package ingest loads documents, splits them into chunks and upserts the
// chunks into the vector index.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"

	"medicalbot/internal/embedding"
	"medicalbot/internal/parser"
	"medicalbot/internal/vectorstore"
)

type Options struct {
	DataDir      string
	Recursive    bool
	ChunkSize    int
	ChunkOverlap int
	Dimension    int
	// Recreate empties the index before writing.
	Recreate bool
	// DryRun stops after splitting; nothing is embedded or written.
	DryRun bool
}

type Result struct {
	Pages  int
	Chunks []schema.Document
	Stored int
}

// Run executes the pipeline. store and embedder may be nil for a dry run.
func Run(ctx context.Context, opts Options, embedder embeddings.Embedder, store vectorstore.Store) (*Result, error) {
	pages, err := parser.LoadDir(opts.DataDir, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	docs, err := parser.Split(pages, opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("split documents: %w", err)
	}
	log.Info().Int("pages", len(pages)).Int("chunks", len(docs)).Msg("Split documents")

	res := &Result{Pages: len(pages), Chunks: docs}
	if opts.DryRun {
		return res, nil
	}

	if err := embedding.CheckDimension(ctx, embedder, opts.Dimension); err != nil {
		return nil, err
	}
	if opts.Recreate {
		log.Info().Msg("Clearing vector index")
		if err := store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	}
	if len(docs) == 0 {
		log.Warn().Str("dir", opts.DataDir).Msg("No chunks to store")
		return res, nil
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	ids, err := store.AddDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}
	res.Stored = len(ids)
	return res, nil
}
