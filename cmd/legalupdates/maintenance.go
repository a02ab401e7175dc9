package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"legalupdates/internal/database"
	"legalupdates/internal/export"
	"legalupdates/internal/storage"
	"legalupdates/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cmd.Context(), cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}

var seedAdmin bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories and, optionally, the default admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.SeedCategories(cmd.Context(), db); err != nil {
			return err
		}
		if seedAdmin {
			return database.SeedAdmin(db)
		}
		return nil
	},
}

var (
	exportDir      string
	exportToBucket bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every legal update to markdown files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		e := export.New(store.NewUpdateStore(db), cfg.HomeURL(), cfg.SlugMode)
		if !exportToBucket {
			n, err := e.Export(cmd.Context(), exportDir)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			slog.Info("export finished", "dir", exportDir, "files", n)
			return nil
		}

		client, err := storage.New(storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
		})
		if err != nil {
			return err
		}
		if client == nil {
			return errors.New("export --bucket needs S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET")
		}
		n, err := e.ExportTo(cmd.Context(), client)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		slog.Info("export finished", "bucket", client.Bucket(), "prefix", cfg.S3Prefix, "files", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedAdmin, "admin", false, "also create admin@legalupdates.local if no users exist")
	exportCmd.Flags().StringVar(&exportDir, "dir", "export", "output directory")
	exportCmd.Flags().BoolVar(&exportToBucket, "bucket", false, "upload to the configured S3 bucket instead of --dir")
}
