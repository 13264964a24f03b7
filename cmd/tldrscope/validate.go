package main

import (
	"github.com/spf13/cobra"

	"tldrscope/internal/app"
	"tldrscope/internal/infra/render"
)

func newValidateCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [tool]",
		Short: "Check a tool's protocol output for compliance",
		Long:  "Prints every validation finding and exits with status 1 when any error was found. Warnings never fail validation.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			rt, err := loadRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.close()

			source, err := newSource(rt, opts, args)
			if err != nil {
				return err
			}
			service, cleanup, err := app.InitializeService(rt.settings, rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			validation, err := service.Validate(ctx, source)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), validation); err != nil {
					return err
				}
			} else {
				render.PrintValidation(cmd.OutOrStdout(), validation)
			}
			if !validation.Success {
				return exitSilent(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "read captured protocol text from this index file or directory")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the validation report as JSON")

	return cmd
}
