package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"oceaneye/internal/digest"
	"oceaneye/internal/identification"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded identifications",
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryStatsCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

var historyColumns = []column{
	col("ID", alignRight),
	col("When", alignLeft),
	col("Outcome", alignLeft),
	col("Species", alignLeft),
	col("Digest", alignLeft),
	col("Source", alignLeft),
	col("Took", alignRight),
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent identifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if format != outputText {
				return writeStructured(cmd, format, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No identifications recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					humanize.Time(e.CreatedAt),
					e.Outcome,
					e.RecordName,
					digest.Digest(e.Digest).Short(),
					e.Source,
					(time.Duration(e.DurationMS) * time.Millisecond).String(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(historyColumns, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	addOutputFlag(cmd, &output)
	return cmd
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count identifications by outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := store.CountByOutcome(cmd.Context())
			if err != nil {
				return err
			}
			total := 0
			rows := make([][]string, 0, len(counts))
			for _, outcome := range identification.Outcomes() {
				n := counts[string(outcome)]
				total += n
				rows = append(rows, []string{string(outcome), strconv.Itoa(n)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{col("Outcome", alignLeft), col("Count", alignRight)},
				rows,
				[]string{"total", strconv.Itoa(total)},
			))
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded identification",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}
}
