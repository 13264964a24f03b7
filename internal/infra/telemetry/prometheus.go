package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tldrscope/internal/domain"
)

type PrometheusMetrics struct {
	fetchDuration      *prometheus.HistogramVec
	runDuration        *prometheus.HistogramVec
	runs               *prometheus.CounterVec
	commands           *prometheus.GaugeVec
	accessibleCommands *prometheus.GaugeVec
	findings           *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tldrscope_fetch_duration_seconds",
				Help:    "Duration of protocol fetches in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"scope", "status"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tldrscope_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"dialect"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tldrscope_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"dialect", "status"},
		),
		commands: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tldrscope_commands",
				Help: "Number of commands declared by the last analysed tool",
			},
			[]string{"tool"},
		),
		accessibleCommands: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tldrscope_accessible_commands",
				Help: "Number of declared commands that produced protocol text",
			},
			[]string{"tool"},
		),
		findings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tldrscope_validation_findings_total",
				Help: "Total number of validation findings",
			},
			[]string{"severity"},
		),
	}
}

func (p *PrometheusMetrics) ObserveFetch(metric domain.FetchMetric) {
	p.fetchDuration.WithLabelValues(string(metric.Scope), string(metric.Status)).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveRun(dialect domain.Dialect, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.runs.WithLabelValues(string(dialect), status).Inc()
	p.runDuration.WithLabelValues(string(dialect)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) SetCommands(tool string, total int, accessible int) {
	p.commands.WithLabelValues(tool).Set(float64(total))
	p.accessibleCommands.WithLabelValues(tool).Set(float64(accessible))
}

func (p *PrometheusMetrics) ObserveFindings(severity domain.Severity, count int) {
	if count <= 0 {
		return
	}
	p.findings.WithLabelValues(string(severity)).Add(float64(count))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
