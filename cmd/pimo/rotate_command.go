package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pimo/internal/logging"
	"pimo/internal/rotation"
	"pimo/internal/services/systemd"
	"pimo/internal/store"
)

func newRotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Stop the current service and start the next in rotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, "pimo")
			if err != nil {
				return err
			}

			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			runner := rotation.NewRunner(cfg, st, systemd.New(cfg.Rotation.SystemctlCmd), logger)
			result, err := runner.Rotate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Services == 0:
				fmt.Fprintln(out, "No services in rotation; nothing to do.")
			case result.Outcome.Suppressed:
				fmt.Fprintln(out, "Sync window active; rotation suppressed.")
			default:
				fmt.Fprintf(out, "Rotated %s -> %s (run %s)\n",
					result.Outcome.Stop, result.Outcome.Start, result.RunID)
				if result.StopErr != nil {
					fmt.Fprintf(out, "warning: stop %s: %v\n", result.Outcome.Stop, result.StopErr)
				}
				if result.StartErr != nil {
					fmt.Fprintf(out, "warning: start %s: %v\n", result.Outcome.Start, result.StartErr)
				}
			}
			return nil
		},
	}
}
