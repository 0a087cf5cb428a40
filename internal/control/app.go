package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"

	"github.com/dvvinfo/btlz-wb-test/internal/core/config"
	"github.com/dvvinfo/btlz-wb-test/internal/core/errs"
	"github.com/dvvinfo/btlz-wb-test/internal/core/normalize"
	"github.com/dvvinfo/btlz-wb-test/internal/core/retry"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/sheets"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/storage"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/storage/memory"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/storage/postgres"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/wb"
	"github.com/dvvinfo/btlz-wb-test/internal/monitoring"
	"github.com/dvvinfo/btlz-wb-test/internal/syncer"
)

// Config holds the application configuration.
type Config struct {
	Port     int
	Source   wb.Config
	Retry    retry.Config
	Database postgres.Config
	Schedule config.ScheduleConfig
	Sync     config.SyncConfig
	Sheets   []sheets.TargetConfig
}

// App wires the fetch and sync pipelines and manages their lifecycle.
// All collaborators are injected at construction; there is no package state.
type App struct {
	cfg        Config
	store      storage.TariffRepository
	db         *postgres.DB
	client     *wb.Client
	normalizer *normalize.Normalizer
	syncer     *syncer.Syncer
	cron       *cron.Cron
	monServer  *monitoring.Server
	log        *slog.Logger
}

// NewApp creates an App with all dependencies initialized. A configured but
// unreachable database is a fatal startup error.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	log := slog.Default()
	clock := clockwork.NewRealClock()

	// 1. Initialize storage
	var store storage.TariffRepository
	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		db.StartMetricsCollector(ctx)
		store = postgres.NewTariffRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store = memory.NewTariffRepo()
		slog.Info("Using in-memory storage")
	}

	// 2. Initialize sheet sinks
	sinks := make([]syncer.Sink, 0, len(cfg.Sheets))
	for _, tc := range cfg.Sheets {
		target, err := sheets.NewTarget(ctx, tc)
		if err != nil {
			return nil, fmt.Errorf("failed to init sheets target %q: %w", tc.ID, err)
		}
		sinks = append(sinks, target)
	}

	var health monitoring.HealthChecker
	if db != nil {
		health = db
	}

	return &App{
		cfg:        cfg,
		store:      store,
		db:         db,
		client:     wb.NewClient(cfg.Source, clock, log),
		normalizer: normalize.New(clock, log),
		syncer:     syncer.New(store, sinks, cfg.Sync.WriteTimeout, log),
		cron:       cron.New(),
		monServer:  monitoring.NewServer(health, cfg.Port),
		log:        log,
	}, nil
}

// Start registers the schedules and launches the monitoring server. Invalid
// cron expressions abort startup.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.cron.AddFunc(a.cfg.Schedule.Fetch, func() { a.RunFetchCycle(ctx) }); err != nil {
		return fmt.Errorf("invalid fetch schedule %q: %w", a.cfg.Schedule.Fetch, err)
	}
	if _, err := a.cron.AddFunc(a.cfg.Schedule.Sync, func() { a.RunSyncCycle(ctx) }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", a.cfg.Schedule.Sync, err)
	}

	go func() {
		if err := a.monServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Monitoring server stopped", "error", err)
		}
	}()

	// Prime the store before the first scheduled firing.
	go a.RunFetchCycle(ctx)

	a.cron.Start()
	a.log.Info("Scheduler started",
		"fetch_schedule", a.cfg.Schedule.Fetch,
		"sync_schedule", a.cfg.Schedule.Sync,
		"sinks", len(a.cfg.Sheets),
	)
	return nil
}

// RunFetchCycle fetches today's tariffs, normalizes them and upserts the
// batch. Errors abort the cycle but never the process; the next scheduled
// firing retries the whole pipeline.
func (a *App) RunFetchCycle(ctx context.Context) {
	log := a.log.With("cycle", "fetch", "cycle_id", uuid.NewString())
	start := time.Now()

	raws, err := retry.Do(ctx, a.cfg.Retry, "fetch box tariffs", errs.Retryable, a.client.FetchBoxTariffs)
	if err != nil {
		monitoring.FetchCyclesTotal.WithLabelValues("error").Inc()
		log.Error("Fetch cycle aborted", "error", err)
		return
	}

	tariffs := a.normalizer.Normalize(raws)
	skipped := len(raws) - len(tariffs)
	if skipped > 0 {
		monitoring.RecordsSkipped.Add(float64(skipped))
	}

	count, err := a.store.UpsertDaily(ctx, tariffs)
	if err != nil {
		monitoring.FetchCyclesTotal.WithLabelValues("error").Inc()
		log.Error("Failed to store tariffs", "error", err)
		return
	}

	monitoring.FetchCyclesTotal.WithLabelValues("ok").Inc()
	monitoring.TariffsUpserted.Add(float64(count))
	monitoring.CycleDuration.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	log.Info("Fetch cycle complete",
		"fetched", len(raws),
		"stored", count,
		"skipped", skipped,
		"duration", time.Since(start),
	)
}

// RunSyncCycle mirrors the latest snapshot into every sheet target.
func (a *App) RunSyncCycle(ctx context.Context) {
	log := a.log.With("cycle", "sync", "cycle_id", uuid.NewString())
	start := time.Now()

	results := a.syncer.SyncAll(ctx)
	for _, res := range results {
		if res.Success {
			monitoring.SyncTargetsTotal.WithLabelValues("ok").Inc()
			monitoring.SyncRowsWritten.Add(float64(res.RowsWritten))
			log.Info("Sink synced", "target", res.Target, "rows", res.RowsWritten)
		} else {
			monitoring.SyncTargetsTotal.WithLabelValues("error").Inc()
			log.Error("Sink sync failed", "target", res.Target, "error", res.Error)
		}
	}

	monitoring.CycleDuration.WithLabelValues("sync").Observe(time.Since(start).Seconds())
	log.Info("Sync cycle complete", "targets", len(results), "duration", time.Since(start))
}

// Stop shuts the scheduler down, letting a running job finish, then stops the
// monitoring server and closes the database. Abandoned cycles are safe: the
// store only ever sees atomic batches.
func (a *App) Stop(ctx context.Context) error {
	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		a.log.Warn("Shutdown timeout reached, abandoning in-flight cycle")
	}

	if err := a.monServer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop monitoring server: %w", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
