package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tldrscope/internal/app/report"
	"tldrscope/internal/domain"
	"tldrscope/internal/infra/analytics"
	"tldrscope/internal/infra/protocol"
	"tldrscope/internal/infra/protocol/normalizer"
	"tldrscope/internal/infra/protocol/validator"
	"tldrscope/internal/infra/telemetry"
)

// RunOptions tunes one pipeline run.
type RunOptions struct {
	Dialect domain.Dialect
	TopN    int
}

// Runner drives one source through parse, normalize, validate, analyze and
// assemble. A Runner holds no per-run state and may be reused.
type Runner struct {
	metrics domain.Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator overrides the run id source.
func WithIDGenerator(newID func() string) RunnerOption {
	return func(r *Runner) { r.newID = newID }
}

func NewRunner(metrics domain.Metrics, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		metrics: metrics,
		logger:  logger.Named("runner"),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type collected struct {
	meta         domain.ToolMetadata
	entries      []validator.Entry
	records      []domain.CommandRecord
	inaccessible []string
	captured     []string
}

// Run produces the report for source. Protocol failures abort the run;
// unreachable commands are recorded in the report instead.
func (r *Runner) Run(ctx context.Context, source domain.ProtocolSource, opts RunOptions) (domain.AnalyticsReport, error) {
	started := time.Now()
	dialect := opts.Dialect

	result, err := r.collect(ctx, source, &dialect)
	if err != nil {
		r.metrics.ObserveRun(dialect, time.Since(started), err)
		r.logger.Warn("run failed",
			telemetry.EventField(telemetry.EventRunFailure),
			telemetry.DialectField(dialect),
			zap.Error(err),
		)
		return domain.AnalyticsReport{}, err
	}

	validation := validator.Validate(result.meta, result.entries)
	stats := analytics.Analyze(result.records, dialect, opts.TopN)

	runID := r.newID()
	out := report.Assemble(report.Parts{
		Metadata:     result.meta,
		Commands:     result.records,
		Inaccessible: result.inaccessible,
		Validation:   validation,
		Analytics:    stats,
		Captured:     result.captured,
	}, r.now(), runID)

	elapsed := time.Since(started)
	r.metrics.SetCommands(result.meta.Name, validation.TotalCommands, validation.AccessibleCommands)
	r.metrics.ObserveFindings(domain.SeverityError, validation.TotalErrors)
	r.metrics.ObserveFindings(domain.SeverityWarning, validation.TotalWarnings)
	r.metrics.ObserveRun(dialect, elapsed, nil)

	r.logger.Info("run complete",
		telemetry.EventField(telemetry.EventRunSuccess),
		telemetry.RunIDField(runID),
		telemetry.ToolField(result.meta.Name),
		telemetry.DialectField(dialect),
		telemetry.DurationField(elapsed),
		zap.Int("commands", validation.TotalCommands),
		zap.Int("inaccessible", len(result.inaccessible)),
		zap.Bool("success", validation.Success),
	)
	return out, nil
}

// Validate runs the pipeline and returns only the validation outcome.
func (r *Runner) Validate(ctx context.Context, source domain.ProtocolSource, opts RunOptions) (domain.ValidationReport, error) {
	out, err := r.Run(ctx, source, opts)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	return out.Validation, nil
}

func (r *Runner) collect(ctx context.Context, source domain.ProtocolSource, dialect *domain.Dialect) (collected, error) {
	if source == nil {
		return collected{}, domain.E(domain.CodeInvalidArgument, "app.run", "protocol source is required", nil)
	}

	index, err := r.fetchIndex(ctx, source)
	if err != nil {
		return collected{}, err
	}
	*dialect = protocol.Resolve(*dialect, index)

	switch *dialect {
	case domain.DialectStream:
		return r.collectStream(index)
	default:
		return r.collectKeyValue(ctx, source, index)
	}
}

func (r *Runner) fetchIndex(ctx context.Context, source domain.ProtocolSource) (string, error) {
	started := time.Now()
	text, err := source.Index(ctx)
	status := domain.FetchStatusSuccess
	if err != nil {
		status = domain.FetchStatusError
	}
	r.metrics.ObserveFetch(domain.FetchMetric{Scope: domain.FetchScopeIndex, Status: status, Duration: time.Since(started)})
	r.logger.Debug("index fetched",
		telemetry.EventField(telemetry.EventFetchIndex),
		telemetry.DurationField(time.Since(started)),
		zap.Bool("ok", err == nil),
	)
	return text, err
}

func (r *Runner) collectKeyValue(ctx context.Context, source domain.ProtocolSource, index string) (collected, error) {
	meta, err := protocol.ParseIndex(index)
	if err != nil {
		return collected{}, err
	}
	out := collected{
		meta:     meta,
		entries:  make([]validator.Entry, 0, len(meta.Commands)),
		records:  make([]domain.CommandRecord, 0, len(meta.Commands)),
		captured: []string{index},
	}

	for _, name := range meta.Commands {
		started := time.Now()
		text, err := source.Command(ctx, name)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return collected{}, ctxErr
		}
		if err != nil {
			r.metrics.ObserveFetch(domain.FetchMetric{Scope: domain.FetchScopeCommand, Status: domain.FetchStatusUnavailable, Duration: time.Since(started)})
			level := r.logger.Debug
			if !errors.Is(err, domain.ErrCommandUnavailable) {
				level = r.logger.Warn
			}
			level("command unavailable",
				telemetry.EventField(telemetry.EventCommandUnavailable),
				telemetry.ToolField(meta.Name),
				telemetry.CommandField(name),
				zap.Error(err),
			)
			out.entries = append(out.entries, validator.Entry{Declared: name})
			out.inaccessible = append(out.inaccessible, name)
			continue
		}
		r.metrics.ObserveFetch(domain.FetchMetric{Scope: domain.FetchScopeCommand, Status: domain.FetchStatusSuccess, Duration: time.Since(started)})

		parsed := protocol.ParseCommand(name, text)
		rec := normalizer.NormalizeKeyValue(parsed)
		out.entries = append(out.entries, validator.Entry{Declared: name, Record: rec, Accessible: true})
		out.captured = append(out.captured, text)
		// A block without a single field is validated but left out of analytics.
		if parsed.Block.Len() == 0 {
			r.logger.Debug("command block empty",
				telemetry.ToolField(meta.Name),
				telemetry.CommandField(name),
			)
			continue
		}
		out.records = append(out.records, rec)
	}
	return out, nil
}

func (r *Runner) collectStream(index string) (collected, error) {
	doc, err := protocol.ParseStream(index)
	if err != nil {
		return collected{}, err
	}
	raws := make([]protocol.RawRecord, 0, len(doc.Records))
	for _, rec := range doc.Records {
		raws = append(raws, rec)
	}
	records, err := normalizer.NormalizeAll(raws, doc.Metadata.Keymap)
	if err != nil {
		return collected{}, err
	}

	entries := make([]validator.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, validator.Entry{Declared: rec.Name, Record: rec, Accessible: true})
	}
	return collected{
		meta:     doc.Metadata,
		entries:  entries,
		records:  records,
		captured: []string{index},
	}, nil
}
