package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pimo/internal/store"
	"pimo/internal/syncwindow"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage the sync window that suppresses rotation",
	}

	syncCmd.AddCommand(newSyncStartCommand(ctx))
	syncCmd.AddCommand(newSyncStopCommand(ctx))
	syncCmd.AddCommand(newSyncStatusCommand(ctx))
	syncCmd.AddCommand(newSyncApplyCommand(ctx))

	return syncCmd
}

func (c *commandContext) withWindowManager(fn func(*cobra.Command, *syncwindow.Manager) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := c.ensureConfig()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd, syncwindow.NewManager(st, cfg.Sync))
	}
}

func newSyncStartCommand(ctx *commandContext) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open a sync window",
		RunE: ctx.withWindowManager(func(cmd *cobra.Command, manager *syncwindow.Manager) error {
			window, err := manager.Open(cmd.Context(), minutes)
			if err != nil {
				return err
			}
			if window.ExpiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Sync window opened (open-ended).")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync window open until %s.\n",
				window.ExpiresAt.Local().Format("15:04:05"))
			return nil
		}),
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Window length in minutes (0 uses the configured default)")
	return cmd
}

func newSyncStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Close the sync window",
		RunE: ctx.withWindowManager(func(cmd *cobra.Command, manager *syncwindow.Manager) error {
			if err := manager.Close(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sync window closed.")
			return nil
		}),
	}
}

func newSyncStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync window state",
		RunE: ctx.withWindowManager(func(cmd *cobra.Command, manager *syncwindow.Manager) error {
			window, err := manager.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			now := time.Now()
			rows := [][]string{
				{"Active", yesNo(window.ActiveAt(now))},
				{"Opened", timeValue(window.OpenedAt)},
				{"Expires", expiresValue(window)},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		}),
	}
}

// newSyncApplyCommand is the bridge for bus subscribers: the MQTT
// listener (or any other external process) pipes its raw payload
// through `pimo sync apply`.
func newSyncApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <payload>",
		Short: "Apply a raw sync payload (start, start:<minutes>, stop)",
		Args:  cobra.ExactArgs(1),
		RunE: ctx.withWindowManager(func(cmd *cobra.Command, manager *syncwindow.Manager) error {
			event, err := syncwindow.ParsePayload(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			if err := manager.Apply(cmd.Context(), event); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Applied.")
			return nil
		}),
	}
}

func expiresValue(window syncwindow.Window) string {
	if !window.Active {
		return "-"
	}
	if window.ExpiresAt.IsZero() {
		return "open-ended"
	}
	return window.ExpiresAt.Local().Format("2006-01-02 15:04:05")
}
