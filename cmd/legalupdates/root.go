package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"legalupdates/internal/config"
	"legalupdates/internal/database"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "legalupdates",
	Short: "Legal updates publishing server",
	Long: `Serves categorized legal updates at /legal-updates/{category}/{slug}/,
the tabbed listing page with its JSON API, and the admin panel used to
manage updates and categories.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Text logs in development, JSON everywhere else.
		level := slog.LevelInfo
		if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "development" {
			level = slog.LevelDebug
		}
		var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		if level != slog.LevelDebug {
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides LU_CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads the config file named by --config, falling back to
// LU_CONFIG_FILE.
func loadConfig() (*config.Config, error) {
	load := config.Load
	if configFile != "" {
		load = func() (*config.Config, error) { return config.LoadFile(configFile) }
	}
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "slug_mode", cfg.SlugMode)
	return cfg, nil
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
