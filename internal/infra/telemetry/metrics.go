package telemetry

import (
	"time"

	"tldrscope/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveFetch(_ domain.FetchMetric) {}

func (n *NoopMetrics) ObserveRun(_ domain.Dialect, _ time.Duration, _ error) {}

func (n *NoopMetrics) SetCommands(_ string, _ int, _ int) {}

func (n *NoopMetrics) ObserveFindings(_ domain.Severity, _ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
