package cron

import (
	"context"
	"encoding/json"
	"time"

	"coolie/config"
	"coolie/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeCatalogRefresh = "catalog:refresh"
	TypeSessionSweep   = "session:sweep"
)

// CatalogRefresher reloads the catalog from upstream.
type CatalogRefresher interface {
	Refresh(ctx context.Context) (models.Catalog, error)
}

// Sweeper evicts idle in-memory entries, such as sessions or per-IP rate
// limiters.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// SweepPayload is the body of a session:sweep task.
type SweepPayload struct {
	IdleSeconds int64 `json:"idleSeconds"`
}

// Worker owns the asynq server and scheduler for background jobs.
type Worker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux registers the background task handlers. A session:sweep task runs
// every sweeper with the same idle window.
func NewMux(catalogs CatalogRefresher, logger *zap.Logger, sweepers ...Sweeper) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCatalogRefresh, handleCatalogRefresh(catalogs, logger))
	mux.HandleFunc(TypeSessionSweep, handleSessionSweep(sweepers, logger))
	return mux
}

// NewSweepTask builds a session:sweep task for the given idle window.
func NewSweepTask(idle time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(SweepPayload{IdleSeconds: int64(idle / time.Second)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSessionSweep, payload), nil
}

// InitCatalogWorker runs the worker and its periodic schedule in background.
func InitCatalogWorker(catalogs CatalogRefresher, logger *zap.Logger, sweepers ...Sweeper) (*Worker, error) {
	opts := redisOpts()
	w := &Worker{
		srv: asynq.NewServer(opts, asynq.Config{
			Concurrency: 2,
			Queues:      map[string]int{"default": 1},
		}),
		scheduler: asynq.NewScheduler(opts, nil),
		logger:    logger,
	}

	if _, err := w.scheduler.Register(config.AppConfig.CatalogRefreshCron, asynq.NewTask(TypeCatalogRefresh, nil), asynq.Unique(time.Minute)); err != nil {
		return nil, err
	}
	sweep, err := NewSweepTask(config.AppConfig.SessionTTL)
	if err != nil {
		return nil, err
	}
	if _, err := w.scheduler.Register("@every 10m", sweep); err != nil {
		return nil, err
	}

	mux := NewMux(catalogs, logger, sweepers...)

	go func() {
		logger.Info("CatalogWorker: starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := w.srv.Start(mux); err != nil {
				logger.Warn("CatalogWorker: failed to start worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Error("CatalogWorker: max retry attempts reached; background refresh disabled")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
				continue
			}
			break
		}
		if err := w.scheduler.Start(); err != nil {
			logger.Error("CatalogWorker: failed to start scheduler", zap.Error(err))
		}
	}()
	return w, nil
}

// Shutdown stops the scheduler and drains in-flight tasks.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.srv.Shutdown()
	w.logger.Info("CatalogWorker: stopped")
}

func handleCatalogRefresh(catalogs CatalogRefresher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		cat, err := catalogs.Refresh(ctx)
		if err != nil {
			logger.Error("CatalogWorker: refresh failed", zap.Error(err))
			return err
		}
		logger.Info("CatalogWorker: catalog refreshed",
			zap.Int("categories", len(cat.Categories)),
			zap.Int("subCategories", len(cat.SubCategories)),
			zap.Int("services", len(cat.Services)))
		return nil
	}
}

func handleSessionSweep(sweepers []Sweeper, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p SweepPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("CatalogWorker: invalid sweep payload", zap.Error(err))
			return asynq.SkipRetry
		}
		if p.IdleSeconds <= 0 {
			return asynq.SkipRetry
		}
		idle := time.Duration(p.IdleSeconds) * time.Second
		removed := 0
		for _, sw := range sweepers {
			removed += sw.Sweep(idle)
		}
		logger.Debug("CatalogWorker: swept idle entries", zap.Int("removed", removed))
		return nil
	}
}
