package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/newslens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the JSON API:

  POST /summarize         {"originalText"}
  POST /summarize-video   {"videoUrl"}
  POST /answer-question   {"summary", "question"}
  POST /detect-fake-news  {"text"}
  POST /ensemble-check    {"text"}
  GET  /healthz

Example:
  newslens serve --addr :5001`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :5001)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Int("classifiers", len(cfg.Classifiers)).
		Msg("starting server")

	return server.New(analyzer, cfg.Server, logger).Serve(ctx, cfg.Server.Addr)
}
