package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tldrscope/internal/app"
	"tldrscope/internal/domain"
	"tldrscope/internal/infra/config"
	"tldrscope/internal/infra/process"
)

type cliOptions struct {
	configPath string
	input      string
	jsonOutput bool
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{}

	root := &cobra.Command{
		Use:           "tldrscope",
		Short:         "Validate and analyse TLDR protocol output of command-line tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultFile+" when present)")
	flags.String("log-level", domain.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("dialect", string(domain.DialectAuto), "protocol dialect: auto, keyvalue or stream")
	flags.String("doc-flag", domain.DefaultDocFlag, "flag that makes the tool print its protocol text")
	flags.Int("top", domain.DefaultTopN, "number of most connected commands to report")
	flags.String("archive", "", "bbolt file that keeps every finished report")
	flags.String("metrics-file", "", "write Prometheus metrics to this textfile after each run")
	flags.String("metrics-addr", "", "serve /metrics and /healthz on this address in watch and mcp modes")

	root.AddCommand(
		newAnalyzeCmd(&opts),
		newValidateCmd(&opts),
		newHistoryCmd(&opts),
		newMCPCmd(&opts),
		newVersionCmd(),
	)

	return root
}

// runtime is what every subcommand needs before doing work.
type runtime struct {
	settings config.Settings
	logger   *zap.Logger
}

func loadRuntime(cmd *cobra.Command, opts *cliOptions) (runtime, error) {
	bootstrap, err := app.NewLogger(domain.DefaultLogLevel)
	if err != nil {
		return runtime{}, err
	}
	settings, err := config.NewLoader(bootstrap).Load(cmd.Context(), opts.configPath, cmd.Flags())
	if err != nil {
		return runtime{}, err
	}
	logger, err := app.NewLogger(settings.LogLevel)
	if err != nil {
		return runtime{}, err
	}
	return runtime{settings: settings, logger: logger}, nil
}

func (r runtime) close() {
	_ = r.logger.Sync()
}

// serveMetrics runs the metrics endpoint next to a long-running command.
func serveMetrics(ctx context.Context, rt runtime, service *app.Service) {
	go func() {
		if err := service.ServeMetrics(ctx); err != nil {
			rt.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// newSource picks captured files when --input is set and the live tool
// otherwise.
func newSource(rt runtime, opts *cliOptions, args []string) (domain.ProtocolSource, error) {
	if strings.TrimSpace(opts.input) != "" {
		if len(args) > 0 {
			return nil, domain.E(domain.CodeInvalidArgument, "cli.source", "pass either a tool or --input, not both", nil)
		}
		return process.NewFileSource(opts.input)
	}
	if len(args) != 1 {
		return nil, domain.E(domain.CodeInvalidArgument, "cli.source", "a tool name is required (or --input)", nil)
	}
	return process.NewCommandSource(process.CommandSourceOptions{
		Tool:    args[0],
		DocFlag: rt.settings.DocFlag,
	}, rt.logger), nil
}
