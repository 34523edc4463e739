// Package main is the entry point for the mon-site server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Junito34/mon-site/internal/articles"
	"github.com/Junito34/mon-site/internal/cache"
	"github.com/Junito34/mon-site/internal/config"
	"github.com/Junito34/mon-site/internal/database"
	"github.com/Junito34/mon-site/internal/handlers"
	"github.com/Junito34/mon-site/internal/router"
	"github.com/Junito34/mon-site/internal/session"
	"github.com/Junito34/mon-site/internal/storage"
	"github.com/Junito34/mon-site/internal/store"
)

func main() {
	// Structured logger — text output, debug level so request logs show up.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(context.Background(), cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	blockStore := store.NewBlockStore(db)
	commentStore := store.NewCommentStore(db)

	// Connect to S3-compatible object storage (optional — saves that carry
	// new images will fail until it is configured).
	var blobs articles.BlobStore
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		blobs = storageClient
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — image uploads disabled")
	}

	// Persistence orchestrator for article saves and deletes.
	articleService := articles.NewService(articleStore, blockStore, blobs)

	// Full-page HTML cache and the realtime comment feed, both on Valkey.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	commentFeed := cache.NewCommentFeed(valkeyClient)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	publicHandlers := handlers.NewPublic(articleStore, blockStore, userStore, pageCache)
	commentHandlers := handlers.NewComments(commentStore, commentFeed)
	moderationHandlers := handlers.NewModeration(articleService, articleStore, blockStore, pageCache)
	userHandlers := handlers.NewUsers(userStore)

	// Set up the Chi router with all middleware and routes.
	r, stopLimiters := router.New(router.Deps{
		Sessions:   sessionStore,
		Auth:       authHandlers,
		Public:     publicHandlers,
		Comments:   commentHandlers,
		Moderation: moderationHandlers,
		Users:      userHandlers,

		SecureCookies: secureCookies,
	})
	defer stopLimiters()

	// Create the HTTP server. No WriteTimeout: the comment stream endpoint
	// holds its connection open indefinitely.
	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
