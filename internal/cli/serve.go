package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/csheth/legalchain/internal/llm"
	"github.com/csheth/legalchain/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference generation backend",
		Long: `Run an HTTP backend that answers POST /generate-nda by drafting the
agreement with the Anthropic Messages API. ANTHROPIC_API_KEY must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

			drafter, err := llm.NewFromEnv(llm.Config{
				Model:       cfg.LLM.Model,
				BaseURL:     cfg.LLM.BaseURL,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: &cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout.Duration,
			})
			if err != nil {
				return err
			}
			slog.Info("drafter configured", "operation", "server_config", "drafter", drafter.Name())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(server.Config{
				Addr:    cfg.Server.Addr,
				Drafter: drafter,
				Options: server.Options{
					RequestsPerSecond: cfg.Server.RequestsPerSec,
					Burst:             cfg.Server.Burst,
				},
				ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
			}).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :5000)")
	return cmd
}
