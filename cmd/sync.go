package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sort"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/dirsync"
	"github.com/andresmejia3/gestureprep/internal/store"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var syncOpts Options

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Delete samples that exist in only one of a class's display and processing trees",
	Long: `For each class, compares <root>/<class>/BMP with <root>/<class>/PGM by file name
and, after confirmation, deletes every file present on only one side.
Use --a and --b to synchronize an arbitrary pair of directories instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSync(cmd, syncOpts)
	},
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncOpts.Classes, "class", "c", nil, "Gesture classes to synchronize (default: all configured)")
	syncCmd.Flags().StringVar(&syncOpts.DirA, "a", "", "First directory of an explicit pair")
	syncCmd.Flags().StringVar(&syncOpts.DirB, "b", "", "Second directory of an explicit pair")
	syncCmd.Flags().BoolVarP(&syncOpts.Yes, "yes", "y", false, "Do not prompt; always synchronize")
	syncCmd.MarkFlagsRequiredTogether("a", "b")
	syncCmd.MarkFlagsMutuallyExclusive("a", "class")
	rootCmd.AddCommand(syncCmd)
}

// syncPair is one pair of trees to synchronize.
type syncPair struct {
	class        string
	a, b         string
	labelA       string
	labelB       string
	lockDirs     []string
	missingFatal bool
}

// syncPairs resolves the trees to synchronize. In per-class mode the root
// and every class name are checked before any pair is touched.
func syncPairs(cmd *cobra.Command, o Options) ([]syncPair, error) {
	if o.DirA != "" || o.DirB != "" {
		locks, err := pairLockDirs(o.DirA, o.DirB)
		if err != nil {
			return nil, err
		}
		return []syncPair{{a: o.DirA, b: o.DirB, labelA: "A", labelB: "B", lockDirs: locks, missingFatal: true}}, nil
	}

	classes := settings.Classes
	if cmd.Flags().Changed("class") {
		classes = o.Classes
	}
	layout := settings.Layout()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := dataset.ValidateClasses(classes); err != nil {
		return nil, err
	}

	pairs := make([]syncPair, 0, len(classes))
	for _, class := range classes {
		pairs = append(pairs, syncPair{
			class:    class,
			a:        layout.DisplayPath(class),
			b:        layout.ProcessPath(class),
			labelA:   layout.DisplayDir,
			labelB:   layout.ProcessDir,
			lockDirs: []string{layout.ClassPath(class)},
		})
	}
	return pairs, nil
}

// pairLockDirs returns the distinct parents of an explicit pair in a fixed
// order. Two trees of the same class share one lock, the class lock.
func pairLockDirs(a, b string) ([]string, error) {
	var dirs []string
	for _, d := range []string{a, b} {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, filepath.Dir(abs))
	}
	sort.Strings(dirs)
	return slices.Compact(dirs), nil
}

// syncTally accumulates outcomes across pairs.
type syncTally struct {
	inSync, synced, declined int
	records                  []types.ItemRecord
	summary                  types.RunSummary
}

func runSync(cmd *cobra.Command, o Options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var prompter dirsync.Prompter = dirsync.NewLinePrompter(cmd.InOrStdin(), out)
	if o.Yes {
		prompter = dirsync.AlwaysProceed{}
	}

	pairs, err := syncPairs(cmd, o)
	if err != nil {
		utils.ShowError("Cannot synchronize", err)
		return err
	}

	run := beginLedger(ctx, store.KindSync, settings.Root)
	tally := &syncTally{}
	var runErr error

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := syncOne(cmd, p, prompter, tally); err != nil {
			if p.missingFatal {
				utils.ShowError("Cannot synchronize", err)
			}
			runErr = err
			break
		}
	}

	run.finish(ctx, tally.records, tally.summary)
	printSyncSummary(out, tally)

	if runErr != nil {
		return runErr
	}
	if n := tally.summary.Failed; n > 0 {
		return fmt.Errorf("%s could not be deleted", utils.Plural(n, "file"))
	}
	return nil
}

// syncOne synchronizes a single pair. Only fatal conditions are returned;
// a class with a missing tree is reported and skipped.
func syncOne(cmd *cobra.Command, p syncPair, prompter dirsync.Prompter, tally *syncTally) error {
	out := cmd.OutOrStdout()
	log := logger.WithFields(logrus.Fields{"class": p.class})

	for _, dir := range []string{p.a, p.b} {
		if err := dataset.RequireDir(dir); err != nil {
			if p.missingFatal {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Skipping %s: %v\n", p.class, err)
			log.WithError(err).Warn("Skipping class")
			tally.summary.Skipped++
			tally.records = append(tally.records, types.ItemRecord{Class: p.class, Status: types.StatusSkipped, Error: err.Error()})
			return nil
		}
	}

	for _, dir := range p.lockDirs {
		lock, err := dataset.Lock(dir)
		if err != nil {
			return err
		}
		defer lock.Unlock()
	}

	if p.class != "" {
		fmt.Fprintf(out, "\n🖐️  Class %s\n", p.class)
	}

	s := &dirsync.Synchronizer{
		Prompter: prompter,
		Log:      log,
		OnDiff: func(d *dirsync.Diff) {
			printDiff(out, p, d)
		},
		OnDelete: func(del dirsync.Deletion) {
			fmt.Fprintf(out, "Deleted %s\n", del.Path)
		},
	}

	res, err := s.Sync(cmd.Context(), p.a, p.b)
	if err != nil {
		var merr *types.MissingDirectoryError
		if errors.As(err, &merr) && !p.missingFatal {
			tally.summary.Skipped++
			tally.records = append(tally.records, types.ItemRecord{Class: p.class, Status: types.StatusSkipped, Error: err.Error()})
			return nil
		}
		return err
	}

	switch {
	case res.NothingToDo:
		tally.inSync++
	case res.Aborted:
		tally.declined++
	default:
		tally.synced++
	}

	label := func(side dirsync.Side) string {
		if side == dirsync.SideA {
			return p.labelA
		}
		return p.labelB
	}
	for _, del := range res.Deleted {
		tally.summary.Succeeded++
		tally.records = append(tally.records, types.ItemRecord{Class: p.class, Side: label(del.Side), Name: del.Name, Status: types.StatusDeleted})
	}
	for _, derr := range res.Failed {
		side := dirsync.SideB
		if filepath.Dir(derr.Path) == res.Diff.A {
			side = dirsync.SideA
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", derr)
		tally.summary.Failed++
		tally.records = append(tally.records, types.ItemRecord{
			Class:  p.class,
			Side:   label(side),
			Name:   filepath.Base(derr.Path),
			Status: types.StatusFailed,
			Error:  derr.Error(),
		})
	}
	return nil
}

func printDiff(w io.Writer, p syncPair, d *dirsync.Diff) {
	fmt.Fprintf(w, "%s dir: %s\n", p.labelA, d.A)
	fmt.Fprintf(w, "         %d will be deleted.\n", len(d.OnlyA))
	fmt.Fprintf(w, "%s dir: %s\n", p.labelB, d.B)
	fmt.Fprintf(w, "         %d will be deleted.\n", len(d.OnlyB))
}

func printSyncSummary(w io.Writer, t *syncTally) {
	utils.Banner(w, "📊 SYNC SUMMARY")
	fmt.Fprintf(w, "✅ Already in sync: %d\n", t.inSync)
	fmt.Fprintf(w, "🔄 Synchronized:    %d (%s deleted)\n", t.synced, utils.Plural(t.summary.Succeeded, "file"))
	if t.declined > 0 {
		fmt.Fprintf(w, "✋ Declined:        %d\n", t.declined)
	}
	if t.summary.Skipped > 0 {
		fmt.Fprintf(w, "⏭️  Skipped:         %s\n", utils.Plural(t.summary.Skipped, "class"))
	}
	if t.summary.Failed > 0 {
		fmt.Fprintf(w, "❌ Failed:          %s\n", utils.Plural(t.summary.Failed, "deletion"))
	}
}
