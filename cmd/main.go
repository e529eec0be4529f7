package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"medicalbot/internal/config"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	var cfgPath string
	root := &cobra.Command{
		Use:          "medicalbot",
		Short:        "Retrieval-augmented medical chatbot",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", configFilePath, "config file")

	root.AddCommand(serveCMD(&cfgPath), ingestCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and sets the global log level from it.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().Str("config", path).Str("vector_store", cfg.VectorStore.Type).Str("session_store", cfg.Session.Store).Msg("Loaded config")
	return cfg
}
