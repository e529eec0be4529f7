package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"medicalbot/internal/embedding"
	"medicalbot/internal/llmservice"
	"medicalbot/internal/rag"
	"medicalbot/internal/server"
	"medicalbot/internal/session"
	"medicalbot/internal/vectorstore"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat web service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*cfgPath)
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			embedder, err := embedding.New(&cfg.EmbedLLM)
			if err != nil {
				log.Fatal().Err(err).Msg("Error initializing embedder")
			}
			if err := embedding.CheckDimension(ctx, embedder, cfg.VectorStore.Dimension); err != nil {
				log.Fatal().Err(err).Msg("Embedding model does not match the index")
			}

			store, err := vectorstore.Open(ctx, cfg, embedder)
			if err != nil {
				log.Fatal().Err(err).Msg("Error opening vector store")
			}
			defer store.Close()

			llm, err := llmservice.NewChatModel(&cfg.LLM)
			if err != nil {
				log.Fatal().Err(err).Msg("Error initializing chat model")
			}
			chain := rag.NewFromStore(store, cfg.RAG.TopK, llm, llmservice.CallOptions(&cfg.LLM)...)

			sessions, err := session.NewStore(cfg.Session)
			if err != nil {
				log.Fatal().Err(err).Msg("Error initializing session store")
			}
			defer sessions.Close()

			return server.New(cfg, chain, sessions).Run(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return serve
}
