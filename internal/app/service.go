package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/config"
	"tldrscope/internal/infra/process"
	"tldrscope/internal/infra/render"
	"tldrscope/internal/infra/store"
	"tldrscope/internal/infra/telemetry"
)

// Result is one analyze run with the files it produced.
type Result struct {
	Report domain.AnalyticsReport
	Paths  []string
}

// Service runs the pipeline and handles everything around it: report
// files, the archive and the metrics textfile.
type Service struct {
	runner   *Runner
	archive  *store.Archive
	gatherer prometheus.Gatherer
	settings config.Settings
	logger   *zap.Logger
}

// NewService wires a Service. archive may be nil when archiving is off.
func NewService(settings config.Settings, runner *Runner, archive *store.Archive, gatherer prometheus.Gatherer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runner:   runner,
		archive:  archive,
		gatherer: gatherer,
		settings: settings,
		logger:   logger.Named("service"),
	}
}

func (s *Service) Settings() config.Settings {
	return s.settings
}

func (s *Service) Archive() *store.Archive {
	return s.archive
}

func (s *Service) runOptions() RunOptions {
	return RunOptions{Dialect: s.settings.Dialect, TopN: s.settings.TopN}
}

// Analyze runs the pipeline over source, writes every configured format
// and archives the report.
func (s *Service) Analyze(ctx context.Context, source domain.ProtocolSource) (Result, error) {
	defer s.flushMetrics()

	report, err := s.runner.Run(ctx, source, s.runOptions())
	if err != nil {
		return Result{}, err
	}
	paths, err := render.Write(s.settings.OutputDir, s.settings.Formats, report)
	if err != nil {
		return Result{Report: report, Paths: paths}, err
	}
	for _, path := range paths {
		s.logger.Info("report written",
			telemetry.EventField(telemetry.EventReportWritten),
			telemetry.RunIDField(report.RunID),
			telemetry.PathField(path),
		)
	}
	if err := s.store(report); err != nil {
		return Result{Report: report, Paths: paths}, err
	}
	return Result{Report: report, Paths: paths}, nil
}

// Validate runs the pipeline over source without writing report files.
func (s *Service) Validate(ctx context.Context, source domain.ProtocolSource) (domain.ValidationReport, error) {
	defer s.flushMetrics()
	return s.runner.Validate(ctx, source, s.runOptions())
}

// AnalyzeTool runs the pipeline against an installed tool. dialect and
// topN override the configured values when set.
func (s *Service) AnalyzeTool(ctx context.Context, tool string, dialect domain.Dialect, topN int) (domain.AnalyticsReport, error) {
	defer s.flushMetrics()

	opts := s.runOptions()
	if dialect != "" {
		opts.Dialect = dialect
	}
	if topN > 0 {
		opts.TopN = topN
	}
	source := process.NewCommandSource(process.CommandSourceOptions{
		Tool:    tool,
		DocFlag: s.settings.DocFlag,
	}, s.logger)

	report, err := s.runner.Run(ctx, source, opts)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}
	if err := s.store(report); err != nil {
		return domain.AnalyticsReport{}, err
	}
	return report, nil
}

func (s *Service) store(report domain.AnalyticsReport) error {
	if s.archive == nil {
		return nil
	}
	if err := s.archive.Put(report); err != nil {
		return err
	}
	s.logger.Info("report archived",
		telemetry.EventField(telemetry.EventReportArchived),
		telemetry.RunIDField(report.RunID),
		telemetry.PathField(s.archive.Path()),
	)
	return nil
}

// ServeMetrics exposes live metrics on the configured address until ctx
// is done. It is a no-op when no address is configured.
func (s *Service) ServeMetrics(ctx context.Context) error {
	return telemetry.ServeMetrics(ctx, s.settings.MetricsAddr, s.gatherer, s.logger)
}

func (s *Service) flushMetrics() {
	if err := telemetry.WriteTextfile(s.settings.MetricsTextfile, s.gatherer); err != nil {
		s.logger.Warn("metrics textfile write failed", telemetry.PathField(s.settings.MetricsTextfile), zap.Error(err))
	}
}
