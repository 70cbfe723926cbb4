package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dealforge-calc/internal/adapter/binding"
	httpadp "dealforge-calc/internal/adapter/http"
	"dealforge-calc/internal/adapter/middleware"
	"dealforge-calc/internal/adapter/repository/mysql"
	"dealforge-calc/internal/infrastructure/cache"
	"dealforge-calc/internal/infrastructure/db"
	"dealforge-calc/internal/infrastructure/logging"
	ucAnalysis "dealforge-calc/internal/usecase/analysis"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Auto-migrate the analyses table before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if autoMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			return err
		}
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := binding.DefaultRegistry()
	analyses := ucAnalysis.NewUsecase(mysql.NewAnalysisRepository(gdb), reg, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(log))

	httpadp.Register(e, httpadp.Routes{
		Health:       httpadp.NewHandler(reg.DealTypes()),
		Calculations: httpadp.NewCalculationHandler(binding.NewAdapter(reg, cfg.BatchConcurrency), log),
		Analyses:     httpadp.NewAnalysisHandler(analyses, log),
		Idempotency:  middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	})

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
