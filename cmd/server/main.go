package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/config"
	"github.com/kama950028/KadrSp/internal/api/handler"
	"github.com/kama950028/KadrSp/internal/api/middleware"
	"github.com/kama950028/KadrSp/internal/api/router"
	"github.com/kama950028/KadrSp/internal/repository"
	"github.com/kama950028/KadrSp/internal/service"
	"github.com/kama950028/KadrSp/pkg/database"
	applogger "github.com/kama950028/KadrSp/pkg/logger"
	"github.com/kama950028/KadrSp/pkg/metrics"
	"github.com/kama950028/KadrSp/pkg/redis"
	"github.com/kama950028/KadrSp/pkg/tempfile"
	"github.com/kama950028/KadrSp/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// 4. Redis (optional: locks stay in-process and uploads are not throttled without it)
	var (
		rdb     *redis.Client
		limiter middleware.Limiter
		locks   service.KeyLocker
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, running with in-process locks", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		limiter = rdb
		locks = service.NewDistributedLocker(rdb, cfg.Ingest.LockTTL)
	} else {
		locks = service.NewLocalLocker()
	}

	// 5. Metrics, background pool and upload store
	m := metrics.New()
	pool := worker.NewPool(logger, m)

	uploads, err := tempfile.NewStore(cfg.Ingest.TempDir, cfg.Ingest.TempRemoveRetries, cfg.Ingest.TempRemoveBackoff,
		logger, tempfile.WithLeakRecorder(m))
	if err != nil {
		logger.Fatal("init upload store failed", zap.Error(err))
	}
	sweeper, err := tempfile.NewSweeper(uploads, cfg.Ingest.TempSweepCron, cfg.Ingest.TempMaxAge, logger)
	if err != nil {
		logger.Fatal("invalid temp sweep schedule", zap.String("spec", cfg.Ingest.TempSweepCron), zap.Error(err))
	}
	sweeper.Start()

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, service.Deps{
		Locks:      locks,
		Files:      uploads,
		Dispatcher: pool,
		Metrics:    m,
	}, logger)

	deps := map[string]handler.Check{
		"database": sqlDB.PingContext,
	}
	if rdb != nil {
		deps["redis"] = rdb.Ping
	}
	h := handler.NewHandler(svc, uploads, deps, logger)

	// 7. Router
	engine := router.Setup(cfg, h, limiter, m.Handler(), logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	// background instructor imports still hold uploads and connections
	if err := pool.Shutdown(ctx); err != nil {
		logger.Warn("background imports did not finish", zap.Error(err))
	}
	sweeper.Stop()

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("stopped")
}
