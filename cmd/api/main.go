package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/doc-study-gateway/internal/adapters/http"
	"github.com/kirillkom/doc-study-gateway/internal/bootstrap"
	"github.com/kirillkom/doc-study-gateway/internal/config"
	"github.com/kirillkom/doc-study-gateway/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger, closeLog := logging.Setup(os.Stdout, bootstrap.ServiceName, cfg.LogLevel, cfg.LogFile)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(app.Uploads, app.Backend, httpadapter.Options{
		Service:              bootstrap.ServiceName,
		UploadMaxMemoryBytes: cfg.UploadMaxMemoryBytes,
		RateLimitRPS:         cfg.APIRateLimitRPS,
		RateLimitBurst:       cfg.APIRateLimitBurst,
		MaxInFlight:          cfg.APIMaxInFlight,
		Metrics:              app.Metrics,
	}).Handler()

	// No write timeout: generation requests stay open as long as the backend needs.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "inference_url", cfg.InferenceURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
