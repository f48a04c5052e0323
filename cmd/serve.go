package cmd

import (
	"fmt"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/config"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/server"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the symptom-analysis HTTP server",
	Long: `Start the HTTP API exposing symptom analysis:

  POST /api/v1/analyze         blocking analysis, JSON in/out
  POST /api/v1/analyze/stream  incremental analysis as Server-Sent Events
  GET  /api/v1/health          liveness (add ?deep=1 to ping the provider)

The server shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides config)")
	serveCmd.Flags().String("port", "", "listen port (overrides config)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger := newLogger(true)

	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	engine := analyzer.New(provider, engineOptions(cfg), logger)
	srv := server.New(cfg.Server, engine, provider, logger)

	// Log config file edits so operators know a restart is needed for the
	// new values to take effect.
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", "file", e.Name, "op", e.Op.String())
	})
	viper.WatchConfig()

	return srv.Run()
}
