package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotengine "ballotroom/contexts/live-meetings/ballot-engine"
	pdfadapter "ballotroom/contexts/live-meetings/ballot-engine/adapters/pdf"
	postgresadapter "ballotroom/contexts/live-meetings/ballot-engine/adapters/postgres"
	"ballotroom/contexts/live-meetings/ballot-engine/application/workers"
	"ballotroom/internal/platform/config"
	"ballotroom/internal/platform/db"
	"ballotroom/internal/platform/httpserver"
	"ballotroom/internal/platform/realtime"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	sweeper       workers.PurgeSweeper
	sweepInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.Migrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, err
	}

	hub := realtime.NewHub(logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := ballotengine.NewModule(ballotengine.Dependencies{
		Meetings:     repo,
		Participants: repo,
		Polls:        repo,
		Votes:        repo,
		Publisher:    hub,
		Renderer:     pdfadapter.Renderer{Logger: logger},
		Clock:        postgresadapter.SystemClock{},
		IDGen:        postgresadapter.UUIDGenerator{},
		Codes:        postgresadapter.CodeGenerator{},
		CodeAttempts: cfg.MeetingCodeAttempts,
		Logger:       logger,
	})

	server := httpserver.New(module, hub, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		sweeper: workers.PurgeSweeper{
			Meetings:     repo,
			Participants: repo,
			Polls:        repo,
			Votes:        repo,
			Logger:       logger,
		},
		sweepInterval: cfg.SweepInterval,
		logger:        logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start(ctx)
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
	)

	for {
		if err := w.sweeper.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
