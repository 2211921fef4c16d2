package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"liquidshuffle/cache"
	"liquidshuffle/config"
	"liquidshuffle/core/agent"
	"liquidshuffle/core/catalog"
	"liquidshuffle/core/discovery"
	"liquidshuffle/core/library"
	"liquidshuffle/db"
	"liquidshuffle/logger"
	"liquidshuffle/model"
	"liquidshuffle/repository"
)

// Start wires the discovery stack and runs the HTTP server until an
// interrupt arrives.
func Start() {
	cfg := config.Load()

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Redis is preferred for the album cache; an in-process map keeps the
	// engine usable when it is unreachable.
	var store cache.Store
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, using in-memory album cache", logger.ErrorField(err))
		store = cache.NewMemoryStore()
	} else {
		defer db.CloseRedis()
		store = cache.NewRedisStore(db.RedisClient)
		logger.Info("connected to redis")
	}

	// The database is optional. Without it the library loads straight
	// from the export file.
	var repo repository.LibraryRepository
	if cfg.DBHost != "" {
		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Warn("database unavailable, using file-backed library", logger.ErrorField(err))
		} else {
			defer db.CloseGormDB()
			if err := db.AutoMigrateModels(&model.LibraryEntry{}); err != nil {
				logger.Fatal("failed to migrate schema", logger.ErrorField(err))
			}
			repo = repository.NewGormLibraryRepository(db.GormDB)
		}
	}

	pool := library.NewPool(repo, cfg.LibraryPath)
	if err := pool.Load(context.Background()); err != nil {
		logger.Fatal("failed to load library", logger.ErrorField(err))
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := pool.Watch(watchCtx); err != nil && err != context.Canceled {
			logger.Warn("library watcher stopped", logger.ErrorField(err))
		}
	}()

	gateway := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	hydrator := discovery.NewHydrator(gateway, store, cfg.CatalogSearchLimit)
	engine := discovery.NewEngine(hydrator, gateway, store, discovery.NewSessionMemory(), cfg.AttemptBudget)

	var suggester discovery.Suggester
	if cfg.AIKey != "" {
		suggester = agent.NewSuggestionAgent(&agent.SuggestionAgentConfig{
			APIBaseURL:  cfg.AIBaseURL,
			APIKey:      cfg.AIKey,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     cfg.AITimeout,
		})
	}

	handler := NewDiscoveryHandler(engine, pool, suggester)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/discovery/shuffle", handler.ShuffleHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/discovery/hydrate", handler.HydrateHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/discovery/refresh", handler.RefreshHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/discovery/session/reset", handler.ResetSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/discovery/suggest", handler.SuggestHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/library", handler.LibraryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/library/reload", handler.ReloadLibraryHandler).Methods(http.MethodPost)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", cfg.ServerAddr),
			logger.Int("libraryEntries", pool.Len()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
