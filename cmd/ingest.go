package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"medicalbot/internal/embedding"
	"medicalbot/internal/helper"
	"medicalbot/internal/ingest"
	"medicalbot/internal/parser"
	"medicalbot/internal/vectorstore"
)

type exporter interface {
	Export(ctx context.Context) error
}

func ingestCMD(cfgPath *string) *cobra.Command {
	var (
		dataDir   string
		recursive bool
		dryRun    bool
		recreate  bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Split documents into chunks and upsert them into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*cfgPath)
			if dataDir == "" {
				dataDir = cfg.Ingest.DataDir
			}
			ctx := cmd.Context()
			opts := ingest.Options{
				DataDir:      dataDir,
				Recursive:    recursive,
				ChunkSize:    cfg.Ingest.ChunkSize,
				ChunkOverlap: cfg.Ingest.ChunkOverlap,
				Dimension:    cfg.VectorStore.Dimension,
				Recreate:     recreate,
				DryRun:       dryRun,
			}

			if dryRun {
				res, err := ingest.Run(ctx, opts, nil, nil)
				if err != nil {
					log.Fatal().Err(err).Msg("Error parsing documents")
				}
				helper.PrettyPrint(parser.Chunks(res.Chunks))
				return nil
			}

			embedder, err := embedding.New(&cfg.EmbedLLM)
			if err != nil {
				log.Fatal().Err(err).Msg("Error initializing embedder")
			}
			store, err := vectorstore.Open(ctx, cfg, embedder)
			if err != nil {
				log.Fatal().Err(err).Msg("Error opening vector store")
			}
			defer store.Close()

			res, err := ingest.Run(ctx, opts, embedder, store)
			if err != nil {
				log.Fatal().Err(err).Msg("Error ingesting documents")
			}

			if e, ok := store.(exporter); ok && cfg.VectorStore.InMemory {
				if err := e.Export(ctx); err != nil {
					log.Fatal().Err(err).Msg("Error exporting collection")
				}
			}
			log.Info().Int("pages", res.Pages).Int("stored", res.Stored).Msg("Ingestion complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory to read documents from (overrides ingest.data_dir)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print chunks as JSON and write nothing")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "empty the index before writing")
	return cmd
}
