package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/cyber-assistant/internal/application"
	appanalysis "github.com/bryanwahyu/cyber-assistant/internal/application/analysis"
	apphistory "github.com/bryanwahyu/cyber-assistant/internal/application/history"
	"github.com/bryanwahyu/cyber-assistant/internal/config"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/ai/openai"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/breach"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/httpserver"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/telemetry"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/upstream"
	"github.com/bryanwahyu/cyber-assistant/internal/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Tracing.ServiceName, logger)
		if err != nil {
			return fmt.Errorf("tracer init: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	checks := map[string]middleware.HealthChecker{}

	store, closeStore, err := openHistory(ctx, cfg, logger, checks)
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	defer closeStore()

	completer := openai.NewClient(openai.Options{
		APIKey:  cfg.Credentials.Groq,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Timeout: cfg.CompletionTimeout(),
		Logger:  logger,
	})

	fileRep, closeCache := withFileCache(ctx, cfg, logger, checks, upstream.NewVirusTotal(upstream.Options{
		APIKey:  cfg.Credentials.VirusTotal,
		BaseURL: cfg.Upstreams.VirusTotal,
		Logger:  logger,
	}))
	defer closeCache()

	historyLog := apphistory.NewLog(store, application.SystemClock{}, logger)
	svc := &appanalysis.Service{
		Completer: completer,
		URLRep: upstream.NewSafeBrowsing(upstream.Options{
			APIKey:  cfg.Credentials.Google,
			BaseURL: cfg.Upstreams.SafeBrowsing,
			Logger:  logger,
		}),
		FileRep: fileRep,
		IPRep: upstream.NewAbuseIPDB(upstream.Options{
			APIKey:  cfg.Credentials.AbuseIPDB,
			BaseURL: cfg.Upstreams.AbuseIPDB,
			Logger:  logger,
		}),
		Feed: upstream.NewOTX(upstream.Options{
			APIKey:  cfg.Credentials.OTX,
			BaseURL: cfg.Upstreams.OTX,
			Logger:  logger,
		}),
		Breach:  breach.NewDemoTable(),
		History: historyLog,
		Logger:  logger,
	}

	if archive := openArchive(ctx, cfg, logger, checks); archive != nil {
		svc.Samples = archive
		historyLog.Archive = archive
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
	stopSweep := make(chan struct{})
	defer close(stopSweep)
	go limiter.Run(stopSweep)

	handler := httpserver.NewRouter(svc, httpserver.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		SMSRegion:      cfg.SMS.DefaultRegion,
		Limiter:        limiter,
		HealthChecks:   checks,
		Logger:         logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr), slog.String("history_driver", cfg.History.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-stop:
	}
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	return nil
}
