package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tagboard/internal/cache"
	"tagboard/internal/config"
	"tagboard/internal/http"
	"tagboard/internal/metrics"
	"tagboard/internal/notes"
	"tagboard/internal/search"
	"tagboard/internal/service"
	"tagboard/internal/storage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API searches image-board posts by tag queries and post notes by free text.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Tagboard Search API
//   description: |
//     Tag query search with negation, wildcards and meta-tags, progressive
//     tag narrowing, and full-text search over post notes.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath, cfg.DBAuthToken)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	// Remote stores are provisioned by ingestion
	if !storage.IsRemoteDSN(cfg.DBPath) {
		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}
	slog.Info("Database initialized", "remote", storage.IsRemoteDSN(cfg.DBPath))

	// Metrics on a dedicated registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Create repository instances
	tagRepo := storage.NewTagRepo(db)
	postRepo := storage.NewPostRepo(db)
	noteRepo := storage.NewNoteRepo(db)
	statsRepo := storage.NewStatsRepo(db)

	// Every cache tier registers with the group so one call can drop them all
	caches := cache.NewGroup(m)

	resolver, err := search.NewResolver(tagRepo, caches, cfg.TagIDCacheSize)
	if err != nil {
		log.Fatalf("Failed to create tag resolver: %v", err)
	}
	wildcards, err := search.NewWildcardEngine(tagRepo, caches, search.WildcardConfig{
		TagLimit:    cfg.WildcardTagLimit,
		MinLiterals: cfg.WildcardMinLiterals,
		CacheSize:   cfg.WildcardCacheSize,
		CacheTTL:    cfg.WildcardCacheTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create wildcard engine: %v", err)
	}
	composer, err := search.NewComposer(postRepo, resolver, wildcards, search.DefaultRegistry(), caches, search.ComposerConfig{
		PageSize:     cfg.PageSize,
		MetaCountTTL: cfg.BrowseCacheTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create query composer: %v", err)
	}
	narrower, err := search.NewNarrower(tagRepo, postRepo, resolver, caches, search.NarrowerConfig{
		CategoryCaps:     cfg.CategoryCaps,
		Blacklist:        cfg.TagBlacklist,
		MinLiterals:      cfg.WildcardMinLiterals,
		PostSetCacheSize: cfg.PostSetCacheSize,
		TreeCacheSize:    cfg.TagTreeCacheSize,
		TreeCacheTTL:     cfg.TagTreeCacheTTL,
		BrowseCacheTTL:   cfg.BrowseCacheTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create tag-tree narrower: %v", err)
	}
	noteSearcher, err := notes.NewSearcher(noteRepo, caches, notes.Config{
		PageSize:       cfg.NotePageSize,
		MinQueryLength: cfg.NoteMinQueryLength,
		CandidateLimit: cfg.NoteCandidateLimit,
		CacheSize:      cfg.NoteCacheSize,
		CacheTTL:       cfg.NoteCacheTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create note searcher: %v", err)
	}
	slog.Info("Search components initialized", "cache_tiers", caches.Tiers())

	searchService := service.NewSearchService(service.Dependencies{
		Composer: composer,
		Narrower: narrower,
		Notes:    noteSearcher,
		Caches:   caches,
		Stats:    statsRepo,
		Store:    db,
		Metrics:  m,
	})

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		SearchService:  searchService,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminToken:     cfg.AdminToken,
	})
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set; admin routes are open")
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
