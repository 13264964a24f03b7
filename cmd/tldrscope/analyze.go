package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tldrscope/internal/app"
	"tldrscope/internal/domain"
	"tldrscope/internal/infra/render"
)

type analyzeOptions struct {
	watch bool
	stats bool
}

func newAnalyzeCmd(opts *cliOptions) *cobra.Command {
	local := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [tool]",
		Short: "Collect a tool's protocol output and write analytics reports",
		Long: "Runs `<tool> --tldr` and every declared command, validates and analyses the result, " +
			"then writes one report per configured format. With --input the protocol text is read " +
			"from captured files instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			rt, err := loadRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.close()

			if local.watch && opts.input == "" {
				return domain.E(domain.CodeInvalidArgument, "cli.analyze", "--watch needs --input", nil)
			}
			source, err := newSource(rt, opts, args)
			if err != nil {
				return err
			}

			service, cleanup, err := app.InitializeService(rt.settings, rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			runOnce := func(ctx context.Context) error {
				result, err := service.Analyze(ctx, source)
				if err != nil {
					return err
				}
				printAnalyzeResult(out, result, local.stats)
				return nil
			}
			if local.watch {
				serveMetrics(ctx, rt, service)
				return app.Watch(ctx, opts.input, rt.settings.WatchDebounce, rt.logger, runOnce)
			}
			return runOnce(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "read captured protocol text from this index file or directory")
	cmd.Flags().StringP("output", "o", domain.DefaultOutputDir, "directory for report files")
	cmd.Flags().StringSlice("format", nil, "report formats: json, yaml, toml, markdown, html (default json)")
	cmd.Flags().Int("debounce", domain.DefaultWatchDebounceMs, "watch debounce in milliseconds")
	cmd.Flags().BoolVar(&local.watch, "watch", false, "re-run whenever the --input files change")
	cmd.Flags().BoolVar(&local.stats, "stats", false, "print validation and statistics to the console")

	return cmd
}

func printAnalyzeResult(out io.Writer, result app.Result, stats bool) {
	if stats {
		render.PrintValidation(out, result.Report.Validation)
		render.PrintStatistics(out, result.Report)
	}
	render.PrintWritten(out, result.Paths)
}
