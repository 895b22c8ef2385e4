package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pimo/internal/rotation"
	"pimo/internal/store"
	"pimo/internal/syncwindow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show rotation state, sync window, and relay counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			cmdCtx := cmd.Context()

			services, err := rotation.ReadServiceList(cfg.Rotation.ServicesFile)
			if err != nil && !errors.Is(err, rotation.ErrNoServiceList) {
				return err
			}

			cursor, cursorErr := st.RotationCursor(cmdCtx)
			current := "(none)"
			if cursorErr == nil && len(services) > 0 {
				current = services[normalizeIndex(cursor.Index, len(services))]
			}

			window, err := syncwindow.NewManager(st, cfg.Sync).Current(cmdCtx)
			if err != nil {
				return err
			}
			windowValue := "inactive"
			if window.ActiveAt(time.Now()) {
				if window.ExpiresAt.IsZero() {
					windowValue = "active (open-ended)"
				} else {
					windowValue = fmt.Sprintf("active (%s remaining)",
						window.Remaining(time.Now()).Round(time.Second))
				}
			}

			seen, err := st.TotalSeen(cmdCtx)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Services in rotation", strconv.Itoa(len(services))},
				{"Current service", current},
				{"Cursor", cursorValue(cursor, cursorErr)},
				{"Last rotated", timeValue(cursor.LastRotatedAt)},
				{"Sync window", windowValue},
				{"Relay items seen", strconv.Itoa(seen)},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))

			history, err := st.RecentRotations(cmdCtx, historyLimit)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return nil
			}

			historyRows := make([][]string, 0, len(history))
			for _, entry := range history {
				action := fmt.Sprintf("%s -> %s", entry.Stopped, entry.Started)
				if entry.Suppressed {
					action = "suppressed"
				}
				note := ""
				if entry.StopError != "" || entry.StartError != "" {
					note = "errors"
				}
				historyRows = append(historyRows, []string{
					entry.RotatedAt.Local().Format("2006-01-02 15:04"),
					action,
					strconv.Itoa(entry.Cursor),
					note,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Action", "Cursor", "Notes"},
				historyRows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&historyLimit, "history", "n", 10, "Number of recent rotations to show")
	return cmd
}

func cursorValue(cursor store.Cursor, err error) string {
	if err != nil {
		return "corrupt (will reset)"
	}
	return strconv.Itoa(cursor.Index)
}

func timeValue(ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func normalizeIndex(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
