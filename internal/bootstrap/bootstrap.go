package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/doc-study-gateway/internal/config"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/inference"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/queue/nats"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/resilience"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/doc-study-gateway/internal/observability/metrics"
)

const ServiceName = "doc-study-gateway"

// App is the gateway process: upload registry plus the inference forwarder.
type App struct {
	Config config.Config

	Uploads *usecase.UploadRegistry
	Backend ports.InferenceBackend
	Metrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(_ context.Context, cfg config.Config) (*App, error) {
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	var notifier ports.UploadNotifier
	closeFn := func() {}
	if cfg.NATSURL != "" {
		executor := resilience.NewExecutor(resilience.DefaultConfig())
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			return nil, fmt.Errorf("init upload notifier: %w", err)
		}
		notifier = queue
		closeFn = queue.Close
		slog.Info("upload_notifier_enabled", "subject", cfg.NATSSubject)
	}

	return &App{
		Config:  cfg,
		Uploads: usecase.NewUploadRegistry(storage, notifier),
		Backend: inference.New(cfg.InferenceURL),
		Metrics: metrics.NewHTTPServerMetrics(ServiceName),
		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
