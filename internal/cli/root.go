// Package cli implements the speech-confidence command line.
package cli

import (
	"github.com/spf13/cobra"

	"ai-speech-confidence-service/internal/config"
	"ai-speech-confidence-service/internal/observability/logging"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "speech-confidence",
		Short:         "Score spoken answers for grammar and confidence",
		Long:          "speech-confidence grades transcripts of spoken practice answers for grammar accuracy and speaking confidence.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env-file", ".env", "Path to a dotenv file loaded before reading the environment")
	root.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newHistoryCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the env file named by --env-file, reads the configuration
// and initialises logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg := config.Load()

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Observability.LogLevel = lvl
	}
	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: cfg.Service.Name,
		Output:  cmd.ErrOrStderr(),
	})
	return cfg, nil
}

// resolveDBPath returns --db when set, otherwise the configured path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	return cfg.History.DBPath
}
