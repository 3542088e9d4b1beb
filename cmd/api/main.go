package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/achalasia-report/internal/application"
	appanalysis "github.com/bryanwahyu/achalasia-report/internal/application/analysis"
	appreport "github.com/bryanwahyu/achalasia-report/internal/application/report"
	"github.com/bryanwahyu/achalasia-report/internal/config"
	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/provider"
	"github.com/bryanwahyu/achalasia-report/internal/infra/httpserver"
	"github.com/bryanwahyu/achalasia-report/internal/infra/render/pdf"
	"github.com/bryanwahyu/achalasia-report/internal/infra/storage"
	"github.com/bryanwahyu/achalasia-report/internal/logger"
	"github.com/bryanwahyu/achalasia-report/internal/middleware"
)

func main() {
	// .env opsional, env asli tetap menang
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("could not read .env")
	}

	path := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("config load error")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	client, providerName, err := provider.New(cfg)
	if err != nil {
		logger.WithError(err).Fatal("ai provider init error")
	}

	store, driver, err := storage.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).WithField("driver", driver).Fatal("storage init error")
	}

	clock := application.SystemClock{}
	analysisSvc := appanalysis.NewService(client, providerName, clock)
	reportSvc := &appreport.Service{
		Renderer:   pdf.NewRenderer(),
		Measurer:   pdf.NewMeasurer(),
		Driver:     driver,
		Clock:      clock,
		FilePrefix: cfg.Report.FilePrefix,
	}
	reportSvc.Footer.Attribution = cfg.Report.Attribution

	checkers := map[string]middleware.HealthChecker{
		"ai_provider": middleware.CheckFunc(func(context.Context) error {
			if providerName != provider.Sample && cfg.AI.APIKey == "" {
				return ai.ErrMisconfigured
			}
			return nil
		}),
	}
	if store != nil {
		reportSvc.Publisher = store
		checkers["storage"] = store
	}

	var limiter *middleware.RateLimiter
	stopSweep := make(chan struct{})
	if cfg.RateLimitEnabled() {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		go limiter.Run(time.Minute, stopSweep)
	} else {
		logger.Logger.Warn("rate limiting disabled (server.rateLimit.rps = 0)")
	}

	handler := httpserver.NewRouter(analysisSvc, reportSvc, httpserver.Options{
		Checkers:     checkers,
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimiter:  limiter,
		MaxBodyBytes: cfg.Server.MaxBodyMB << 20,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"provider": providerName,
			"storage":  driver,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Logger.Info("shutting down server...")
	close(stopSweep)

	ctx2, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
