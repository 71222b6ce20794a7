package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"sourceverifier/internal/analysis"
	"sourceverifier/internal/config"
	"sourceverifier/internal/infrastructure/archive"
	"sourceverifier/internal/infrastructure/cache"
	"sourceverifier/internal/infrastructure/fetch"
	"sourceverifier/internal/infrastructure/httpapi"
	"sourceverifier/internal/infrastructure/metrics"
	"sourceverifier/internal/infrastructure/reputation"
	"sourceverifier/internal/infrastructure/storage"
	"sourceverifier/internal/logging"
	"sourceverifier/internal/ports"
	"sourceverifier/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *http.Server
	store  *cache.Memory
	db     *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	var db *sql.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
	} else {
		baseLogger.Warn("no database DSN configured, persistence disabled")
	}

	store := cache.NewMemory(time.Minute)
	recorder := metrics.NewRecorder()

	fetcher := fetch.New(fetch.Config{
		Timeout:           cfg.Fetcher.Timeout(),
		MaxRedirects:      cfg.Fetcher.MaxRedirects,
		MaxBodyBytes:      cfg.Fetcher.MaxBodyBytes,
		RequestsPerSecond: cfg.Fetcher.RequestsPerSecond,
	}, logging.Component(baseLogger, "fetch"))

	analyzer := analysis.New(analysisConfig(cfg.Analysis))

	var archiver ports.Archiver = archive.New(
		cfg.Archive.Endpoint,
		cfg.Archive.APIKey,
		cfg.Archive.Timeout(),
		logging.Component(baseLogger, "archive"),
	)

	var reputationClient ports.ReputationClient
	if cfg.Reputation.Endpoint != "" {
		reputationClient = reputation.New(cfg.Reputation.Endpoint, cfg.Reputation.APIKey)
	}

	verifier := usecase.NewVerifier(usecase.VerifierDeps{
		Fetcher:         fetcher,
		Analyzer:        analyzer,
		Cache:           store,
		Archiver:        archiver,
		Reputation:      reputationClient,
		Repository:      storage.NewPostgresRepository(db),
		Metrics:         recorder,
		TrustedDomains:  cfg.Trust.TrustedDomains,
		VerificationTTL: cfg.Cache.VerificationTTL(),
		ListingTTL:      cfg.Cache.ListingTTL(),
		StatsTTL:        cfg.Cache.StatsTTL(),
		Logger:          logging.Component(baseLogger, "verifier"),
	})

	api := httpapi.New(verifier, recorder, logging.Component(baseLogger, "http"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		server: &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		store: store,
		db:    db,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Server.ListenAddr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	a.store.Close()
	if a.db != nil {
		_ = a.db.Close()
	}

	return err
}

func analysisConfig(cfg config.AnalysisConfig) analysis.Config {
	categories := make([]analysis.Category, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		categories = append(categories, analysis.Category{
			Name:     cat.Name,
			Keywords: cat.Keywords,
		})
	}
	return analysis.Config{
		Categories:    categories,
		BiasTerms:     cfg.BiasTerms,
		WeakModifiers: cfg.WeakModifiers,
	}
}
