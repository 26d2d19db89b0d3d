package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/dirsync"
	"github.com/andresmejia3/gestureprep/internal/store"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/spf13/cobra"
)

var cleanOpts Options

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated tier directories (and optionally the run ledger)",
	Long: `Deletes <root>/<class>/<S> directories produced by resize.
The display and processing trees are never touched. By default every tier
found on disk is removed; use --tier to restrict it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runClean(cmd, cleanOpts)
	},
}

func init() {
	cleanCmd.Flags().StringSliceVarP(&cleanOpts.Classes, "class", "c", nil, "Gesture classes to clean (default: all configured)")
	cleanCmd.Flags().IntSliceVarP(&cleanOpts.Tiers, "tier", "t", nil, "Tier directories to remove (default: every tier present)")
	cleanCmd.Flags().BoolVarP(&cleanOpts.Yes, "yes", "y", false, "Do not prompt for confirmation")
	cleanCmd.Flags().BoolVar(&cleanOpts.DB, "db", false, "Also drop the run ledger tables")
	rootCmd.AddCommand(cleanCmd)
}

// tierTarget is one directory scheduled for removal.
type tierTarget struct {
	class string
	tier  int
	path  string
}

func cleanTargets(layout dataset.Layout, classes []string, only []int) []tierTarget {
	want := make(map[int]bool, len(only))
	for _, t := range only {
		want[t] = true
	}

	var targets []tierTarget
	for _, class := range classes {
		tiers, err := layout.ListTiers(class)
		if err != nil {
			continue
		}
		for _, t := range tiers {
			if len(want) > 0 && !want[t] {
				continue
			}
			targets = append(targets, tierTarget{class: class, tier: t, path: layout.TierPath(class, t)})
		}
	}
	return targets
}

func runClean(cmd *cobra.Command, o Options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	classes := settings.Classes
	if cmd.Flags().Changed("class") {
		classes = o.Classes
	}
	layout := settings.Layout()
	if err := dataset.ValidateClasses(classes); err != nil {
		utils.ShowError("Invalid class selection", err)
		return err
	}

	if o.DB && DB == nil {
		err := errors.New("no ledger configured; pass --db on the root command or set GESTUREPREP_DB")
		utils.ShowError("Cannot reset ledger", err)
		return err
	}

	targets := cleanTargets(layout, classes, o.Tiers)
	if len(targets) == 0 {
		fmt.Fprintln(out, "✨ No generated tier directories found.")
	} else if o.Yes || confirm(reader, out, fmt.Sprintf("⚠️  Delete %s under %s?", utils.Plural(len(targets), "tier folder"), layout.Root)) {
		var run *ledgerRun
		if !o.DB {
			run = beginLedger(ctx, store.KindClean, layout.Root)
		}
		var records []types.ItemRecord
		var sum types.RunSummary
		for _, t := range targets {
			rec := types.ItemRecord{Class: t.class, Tier: t.tier, Status: types.StatusDeleted}
			if err := removeTier(t); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Failed to remove %s: %v\n", t.path, err)
				rec.Status, rec.Error = types.StatusFailed, err.Error()
				sum.Failed++
			} else {
				fmt.Fprintf(out, "🗑️  Removed %s\n", t.path)
				sum.Succeeded++
			}
			records = append(records, rec)
		}
		run.finish(ctx, records, sum)
	}

	if o.DB {
		if o.Yes || confirm(reader, out, "⚠️  Are you sure you want to DROP all ledger tables?") {
			fmt.Fprintln(out, "🗑️  Clearing ledger...")
			if err := DB.Reset(ctx); err != nil {
				utils.ShowError("Failed to reset ledger", err)
				return err
			}
		}
	}

	fmt.Fprintln(out, "✨ Clean complete.")
	return nil
}

// removeTier deletes one tier directory while holding the class lock so a
// concurrent resize never writes into a half-removed tree.
func removeTier(t tierTarget) error {
	lock, err := dataset.Lock(filepath.Dir(t.path))
	if err != nil {
		return err
	}
	defer lock.Unlock()
	return os.RemoveAll(t.path)
}

// confirm asks a yes/no question. Anything but an explicit yes declines.
func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	return dirsync.ParseAnswer(res) == dirsync.Proceed
}
