package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"legalupdates/internal/cache"
	"legalupdates/internal/database"
	"legalupdates/internal/handlers"
	"legalupdates/internal/listing"
	"legalupdates/internal/metrics"
	"legalupdates/internal/middleware"
	"legalupdates/internal/permalink"
	"legalupdates/internal/render"
	"legalupdates/internal/router"
	"legalupdates/internal/session"
	"legalupdates/internal/store"
	"legalupdates/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.SeedCategories(ctx, db); err != nil {
		return err
	}
	// Development data (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.SeedAdmin(db); err != nil {
			return err
		}
	}

	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// Session cookies are Secure outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Fragments rendered by a previous build may be stale.
	fragments := cache.NewFragmentCache(valkeyClient, cache.DefaultFragmentTTL)
	fragments.InvalidateAll(ctx)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	updateStore := store.NewUpdateStore(db)
	m := metrics.New()

	staticBase := cfg.SiteBasePath + "/static"
	resolver := permalink.NewResolver(updateStore, cfg.SlugMode, cfg.SiteBasePath)
	permalinks := permalink.NewRouter(resolver, categoryStore, renderer, m, permalink.RouterConfig{
		SiteName:   cfg.SiteName,
		HomeURL:    cfg.HomeURL(),
		BasePath:   cfg.SiteBasePath,
		StaticBase: staticBase,
	})
	listings := listing.NewService(categoryStore, updateStore, renderer, fragments, m, listing.Options{
		HomeURL:       cfg.HomeURL(),
		SlugMode:      cfg.SlugMode,
		SummaryLength: cfg.SummaryLength,
	})

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	// Shared across instances through Valkey.
	limiter := middleware.NewValkeyLimiter(valkeyClient, 30, time.Minute).
		WithFallback(middleware.NewMemoryLimiter(30, time.Minute))

	r := router.New(router.Deps{
		Sessions:   sessionStore,
		Permalinks: permalinks,
		Admin: handlers.NewAdmin(renderer, categoryStore, updateStore, fragments, handlers.AdminOptions{
			HomeURL:  cfg.HomeURL(),
			SlugMode: cfg.SlugMode,
		}),
		Auth: handlers.NewAuth(renderer, sessionStore, userStore),
		Public: handlers.NewPublic(renderer, categoryStore, listings, handlers.PublicOptions{
			SiteName:   cfg.SiteName,
			BasePath:   cfg.SiteBasePath,
			StaticBase: staticBase,
		}),
		Metrics: m,
		Static:  static,
		Limiter: limiter,
	}, router.Options{
		BasePath:      cfg.SiteBasePath,
		SecureCookies: secureCookies,
		CORSOrigins:   cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "home", cfg.HomeURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
