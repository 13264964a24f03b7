package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/config"
	"tldrscope/internal/infra/store"
	"tldrscope/internal/infra/telemetry"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewGatherer(registry *prometheus.Registry) prometheus.Gatherer {
	return registry
}

func NewPipelineRunner(metrics domain.Metrics, logger *zap.Logger) *Runner {
	return NewRunner(metrics, logger)
}

// NewArchive opens the configured archive. With no archive path it returns
// nil and a no-op cleanup.
func NewArchive(settings config.Settings, logger *zap.Logger) (*store.Archive, func(), error) {
	if settings.ArchivePath == "" {
		return nil, func() {}, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	archive, err := store.OpenArchive(settings.ArchivePath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := archive.Close(); err != nil {
			logger.Warn("archive close failed", telemetry.PathField(settings.ArchivePath), zap.Error(err))
		}
	}
	return archive, cleanup, nil
}
