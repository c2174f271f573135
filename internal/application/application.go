package application

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/deployconf/internal/api"
	"github.com/eugenenazirov/deployconf/internal/config"
	"github.com/eugenenazirov/deployconf/internal/environment"
	"github.com/eugenenazirov/deployconf/internal/record"
	"github.com/eugenenazirov/deployconf/internal/resolver"
	"github.com/eugenenazirov/deployconf/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage *storage.MemoryStorage
	record  record.Record
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// ResolveRecord evaluates the configured policy against env and assembles the
// configuration record.
func ResolveRecord(dep config.Deployment, env environment.Source) record.Record {
	in := resolver.InputsFrom(env, dep.OverrideEnv, dep.ModeEnv)
	baseURL := dep.Resolver().Resolve(in)
	return record.Build(baseURL, dep.RecordOptions())
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, env environment.Source, logger *zap.Logger) (*App, error) {
	rec := ResolveRecord(cfg.Deployment, env)
	logger.Info("deployment configuration resolved",
		zap.Stringer("policy", cfg.Deployment.Policy),
		zap.String("base_url", rec.BaseURL),
		zap.String("render_mode", string(rec.RenderMode)),
	)

	store := storage.NewMemoryStorage()
	if err := store.Put(rec, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to store configuration record: %w", err)
	}

	handler := api.NewHandler(store, api.WithResolverDefaults(cfg.Deployment.Resolver()))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		storage: store,
		record:  rec,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler routes API requests and serves the client-only shell page
// for the record at "/" and at the record's base URL.
func BuildRootHandler(apiHandler http.Handler, rec record.Record) (http.Handler, error) {
	var page bytes.Buffer
	if err := record.RenderIndex(&page, rec); err != nil {
		return nil, err
	}
	index := page.Bytes()

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != rec.BaseURL {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(index)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Record returns a copy of the record resolved at startup.
func (a *App) Record() record.Record {
	return a.record.Clone()
}
