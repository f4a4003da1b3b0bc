package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent draft activity from the local journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Number of events to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFlags.limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.journal == nil {
		return fmt.Errorf("journal is disabled (set journal: true in orbitfund.yml)")
	}

	events, err := a.journal.List(ctx, historyFlags.limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No draft activity yet.")
		return nil
	}

	for _, e := range events {
		fmt.Fprintf(cmd.OutOrStdout(), "%-5d %s  %-17s %-32s %s\n",
			e.Seq,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			e.Draft,
			e.Summary(),
		)
	}
	return nil
}
