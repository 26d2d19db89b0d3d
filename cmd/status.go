package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/dirsync"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/spf13/cobra"
)

var statusOpts Options

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-class sample counts, tree mismatches and generated tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		classes := settings.Classes
		if cmd.Flags().Changed("class") {
			classes = statusOpts.Classes
		}
		if err := dataset.ValidateClasses(classes); err != nil {
			utils.ShowError("Invalid class selection", err)
			return err
		}
		return runStatus(cmd.OutOrStdout(), settings.Layout(), classes)
	},
}

func init() {
	statusCmd.Flags().StringSliceVarP(&statusOpts.Classes, "class", "c", nil, "Gesture classes to show (default: all configured)")
	rootCmd.AddCommand(statusCmd)
}

// classStatus is one row of the status table. Negative counts mean the
// tree is missing.
type classStatus struct {
	class         string
	display       int
	process       int
	onlyA, onlyB  int
	tiers         []int
	compareFailed bool
}

func inspectClass(layout dataset.Layout, class string) classStatus {
	st := classStatus{class: class, display: -1, process: -1}
	if names, err := dataset.ListNames(layout.DisplayPath(class)); err == nil {
		st.display = len(names)
	}
	if names, err := dataset.ListNames(layout.ProcessPath(class)); err == nil {
		st.process = len(names)
	}
	if st.display >= 0 && st.process >= 0 {
		if d, err := dirsync.Compare(layout.DisplayPath(class), layout.ProcessPath(class)); err == nil {
			st.onlyA, st.onlyB = len(d.OnlyA), len(d.OnlyB)
		} else {
			st.compareFailed = true
		}
	}
	st.tiers, _ = layout.ListTiers(class)
	return st
}

func (s classStatus) state() string {
	switch {
	case s.display < 0 && s.process < 0:
		return "missing"
	case s.display < 0 || s.process < 0:
		return "incomplete"
	case s.compareFailed:
		return "unreadable"
	case s.onlyA+s.onlyB > 0:
		return "out of sync"
	}
	return "ok"
}

func count(n int) string {
	if n < 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func runStatus(w io.Writer, layout dataset.Layout, classes []string) error {
	if len(classes) == 0 {
		fmt.Fprintln(w, "No gesture classes configured.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "CLASS\t%s\t%s\tONLY %s\tONLY %s\tTIERS\tSTATE\n", layout.DisplayDir, layout.ProcessDir, layout.DisplayDir, layout.ProcessDir)
	fmt.Fprintln(tw, "-----\t---\t---\t--------\t--------\t-----\t-----")

	for _, class := range classes {
		st := inspectClass(layout, class)
		tiers := make([]string, len(st.tiers))
		for i, t := range st.tiers {
			tiers[i] = strconv.Itoa(t)
		}
		tierCol := strings.Join(tiers, ",")
		if tierCol == "" {
			tierCol = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			st.class, count(st.display), count(st.process), st.onlyA, st.onlyB, tierCol, st.state())
	}
	return tw.Flush()
}
