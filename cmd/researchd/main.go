package main

import (
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/creastat/research/stages"
)

func closeDeadline() time.Time {
	return time.Now().Add(5 * time.Second)
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "researchd",
		Short: "Stream multi-query research jobs over SSE and WebSocket",
		Long: `researchd accepts a list of research queries, fans them out to
concurrent jobs against the OpenAI Responses API with web search, and
streams the merged event sequence back to the client incrementally.

The API key is read from OPENAI_API_KEY.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

			client := openai.NewClient()
			source := stages.NewSearchSource(stages.SearchSourceConfig{
				Client: client,
				Model:  cfg.Model,
				Logger: logger,
			})

			server := NewServer(cfg, source, logger)
			logger.Info().Str("listen", cfg.Listen).Str("model", cfg.Model).Msg("researchd listening")
			return http.ListenAndServe(cfg.Listen, server.Routes())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
