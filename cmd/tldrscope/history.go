package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/store"
)

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "history [tool]",
		Short: "List archived reports",
		Long:  "Without a tool, lists every tool in the archive. With a tool, lists its reports oldest first, or prints the newest report with --latest.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.settings.ArchivePath == "" {
				return domain.E(domain.CodeInvalidArgument, "cli.history", "no archive configured (set --archive or archive.path)", nil)
			}
			archive, err := store.OpenArchive(rt.settings.ArchivePath)
			if err != nil {
				return err
			}
			defer archive.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tools, err := archive.Tools()
				if err != nil {
					return err
				}
				return printTools(out, tools, opts.jsonOutput)
			}

			tool := args[0]
			if latest {
				report, found, err := archive.Latest(tool)
				if err != nil {
					return err
				}
				if !found {
					return exitError{code: 1, message: fmt.Sprintf("no archived reports for %s", tool)}
				}
				return writeJSON(out, report)
			}
			entries, err := archive.List(tool)
			if err != nil {
				return err
			}
			return printHistory(out, entries, opts.jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "print the newest archived report as JSON")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	return cmd
}
