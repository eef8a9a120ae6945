// Package main is the entry point for the shoppos background worker.
// It relays the transactional outbox and runs periodic cleanup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"shoppos/internal/config"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/domain/reports"
	"shoppos/internal/infrastructure/cache"
	"shoppos/internal/infrastructure/mail"
	"shoppos/internal/infrastructure/notify"
	"shoppos/internal/infrastructure/receipt"
	"shoppos/internal/infrastructure/storage/postgres"
	"shoppos/internal/infrastructure/storage/postgres/billing_repo"
	"shoppos/internal/infrastructure/storage/postgres/report_repo"
	"shoppos/pkg/logger"
)

// publishedRetention is how long delivered outbox rows are kept.
const publishedRetention = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		Service:     "shoppos-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting shoppos worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.ApplicationName = "shoppos-worker"
	poolCfg.TimeZone = cfg.DBTimeZone
	poolCfg.AcquireTimeout = cfg.DBAcquireTimeout
	poolCfg.StatementTimeout = cfg.TxStatementTimeout

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	dispatchCfg := notify.Config{
		Bills:    billing_repo.NewBillRepo(txManager),
		Receipts: receipt.NewRenderer(cfg.ShopName),
		ShopName: cfg.ShopName,
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer func() { _ = rdb.Close() }()

		dispatchCfg.Broadcaster = notify.NewRedisBroadcaster(rdb, cfg.EventsChannel)
		dispatchCfg.Reports = reports.NewService(report_repo.NewReportRepo(txManager), cache.NewReportCache(rdb), cfg.ReportCacheTTL)
	}

	if cfg.SMTPEnabled() {
		dispatchCfg.Mailer = mail.NewMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		log.Infow("receipt emails enabled", "smtp_host", cfg.SMTPHost)
	}

	worker := &Worker{
		relay:       postgres.NewOutboxRelay(txManager, cfg.OutboxBatchSize, notify.NewDispatcher(dispatchCfg, log)),
		idempotency: postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL),
		interval:    cfg.OutboxPollInterval,
		log:         log.WithComponent("worker"),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker drives the outbox relay and the hourly cleanup.
type Worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	interval    time.Duration
	log         *logger.Logger
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.interval = time.Second
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	// Drain full batches without waiting for the next tick.
	for ctx.Err() == nil {
		batchCtx := appctx.StartTrace(ctx, appctx.OriginWorker)
		log := w.log.WithContext(batchCtx)
		n, err := w.relay.ProcessBatch(batchCtx)
		if err != nil {
			log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		log.Debugw("processed outbox batch", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	ctx = appctx.StartTrace(ctx, appctx.OriginWorker)
	log := w.log.WithContext(ctx)

	if n, err := w.relay.MoveToDLQ(ctx); err != nil {
		log.Errorw("move outbox messages to DLQ", "error", err)
	} else if n > 0 {
		log.Warnw("outbox messages moved to DLQ", "count", n)
	}

	if n, err := w.relay.PurgePublished(ctx, publishedRetention); err != nil {
		log.Errorw("purge published outbox messages", "error", err)
	} else if n > 0 {
		log.Infow("purged published outbox messages", "count", n)
	}

	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		log.Errorw("cleanup idempotency keys", "error", err)
	} else if n > 0 {
		log.Infow("cleaned up idempotency keys", "count", n)
	}
}
