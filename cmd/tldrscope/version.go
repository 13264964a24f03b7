package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tldrscope/internal/app"
	"tldrscope/internal/domain"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tldrscope %s (%s) protocols %s, %s\n",
				app.Version, app.Build, domain.ProtocolVersionKeyValue, domain.ProtocolVersionStream)
		},
	}
}
