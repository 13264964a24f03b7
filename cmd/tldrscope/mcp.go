package main

import (
	"github.com/spf13/cobra"

	"tldrscope/internal/app"
	"tldrscope/internal/infra/mcpserver"
)

func newMCPCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve tldr_analyze and tldr_validate to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			rt, err := loadRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.close()

			service, cleanup, err := app.InitializeService(rt.settings, rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			serveMetrics(ctx, rt, service)
			return mcpserver.New(service, app.Version, rt.logger).Run(ctx)
		},
	}
}
