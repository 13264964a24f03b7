package telemetry

import (
	"time"

	"go.uber.org/zap"

	"tldrscope/internal/domain"
)

const (
	FieldEvent      = "event"
	FieldTool       = "tool"
	FieldCommand    = "command"
	FieldDialect    = "dialect"
	FieldLine       = "line"
	FieldRunID      = "run_id"
	FieldPath       = "path"
	FieldDurationMs = "duration_ms"
)

const (
	EventFetchIndex         = "fetch_index"
	EventFetchCommand       = "fetch_command"
	EventCommandUnavailable = "command_unavailable"
	EventRunSuccess         = "run_success"
	EventRunFailure         = "run_failure"
	EventReportWritten      = "report_written"
	EventReportArchived     = "report_archived"
	EventWatchReload        = "watch_reload"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func CommandField(command string) zap.Field {
	return zap.String(FieldCommand, command)
}

func DialectField(dialect domain.Dialect) zap.Field {
	return zap.String(FieldDialect, string(dialect))
}

func LineField(line int) zap.Field {
	return zap.Int(FieldLine, line)
}

func RunIDField(runID string) zap.Field {
	return zap.String(FieldRunID, runID)
}

func PathField(path string) zap.Field {
	return zap.String(FieldPath, path)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}
