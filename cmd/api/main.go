package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CameronXie/canteen-admin/internal/config"
	"github.com/CameronXie/canteen-admin/internal/version"
)

var (
	configFile string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "canteen-admin",
	Short:         "Admin API for the campus canteen",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}

		cfg = loaded
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})).With(
			slog.String("version", version.Version),
		)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file; environment variables take precedence")
	rootCmd.AddCommand(serveCmd, migrateCmd, newCreateAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
		}
		logger.Error("command_failed", "error", err)
		os.Exit(1)
	}
}
