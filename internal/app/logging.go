package app

import (
	"go.uber.org/zap"

	"tldrscope/internal/domain"
)

// NewLogger builds the CLI logger: production JSON encoding on stderr at
// the given level. stdout stays free for reports and MCP traffic.
func NewLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = domain.DefaultLogLevel
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "app.logging", "parse log level", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "app.logging", "build logger", err)
	}
	return logger.Named("tldrscope"), nil
}
