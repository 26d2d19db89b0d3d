package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyStatus string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or the items of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if DB == nil {
			err := errors.New("no ledger configured; pass --db or set GESTUREPREP_DB")
			utils.ShowError("Cannot read history", err)
			return err
		}
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return runHistoryItems(cmd, id)
		}
		return runHistory(cmd)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only show items with this status (ok, failed, skipped, deleted)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command) error {
	runs, err := DB.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		utils.ShowError("Failed to list runs", err)
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func printRuns(w io.Writer, runs []types.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tDURATION\tOK\tFAILED\tSKIPPED\tROOT")
	fmt.Fprintln(tw, "--\t----\t-------\t--------\t--\t------\t-------\t----")
	for _, r := range runs {
		duration := "running"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Kind, r.StartedAt.Local().Format("2006-01-02 15:04"), duration,
			r.Summary.Succeeded, r.Summary.Failed, r.Summary.Skipped, r.Root)
	}
	tw.Flush()
}

func runHistoryItems(cmd *cobra.Command, id int64) error {
	items, err := DB.RunItems(cmd.Context(), id, types.Status(historyStatus))
	if err != nil {
		utils.ShowError("Failed to load run items", err)
		return err
	}
	printItems(cmd.OutOrStdout(), items)
	return nil
}

func printItems(w io.Writer, items []types.ItemRecord) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items recorded for this run.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tTIER\tSIDE\tNAME\tSTATUS\tERROR")
	for _, it := range items {
		tier := "-"
		if it.Tier > 0 {
			tier = strconv.Itoa(it.Tier)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			it.Class, tier, dash(it.Side), dash(it.Name), it.Status, utils.Truncate(it.Error, 60))
	}
	tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
