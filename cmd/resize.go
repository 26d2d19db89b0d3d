package cmd

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/andresmejia3/gestureprep/internal/batch"
	"github.com/andresmejia3/gestureprep/internal/canvas"
	"github.com/andresmejia3/gestureprep/internal/config"
	"github.com/andresmejia3/gestureprep/internal/store"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var resizeOpts Options

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Normalize every processing-format sample onto square canvases, one directory per tier",
	Long: `Reads <root>/<class>/PGM/* and writes <root>/<class>/<S>/* for each tier S.
Each image is scaled so its longer side is S and centered on an opaque black SxS canvas.
Outputs are replaced atomically; a file that fails to decode keeps its previous output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runResize(cmd, resizeOpts)
	},
}

func init() {
	resizeCmd.Flags().StringSliceVarP(&resizeOpts.Classes, "class", "c", nil, "Gesture classes to process (default: all configured)")
	resizeCmd.Flags().IntSliceVarP(&resizeOpts.Tiers, "tier", "t", nil, "Target canvas sizes (default: 128,64,32)")
	resizeCmd.Flags().StringVarP(&resizeOpts.Kernel, "kernel", "k", "linear", "Resampling kernel: linear, nearest, catmullrom, lanczos, box, mitchell")
	resizeCmd.Flags().IntVarP(&resizeOpts.Workers, "workers", "w", 1, "Files resized concurrently per batch (0 = one per CPU)")
	rootCmd.AddCommand(resizeCmd)
}

// resizeConfig overlays the command's flags on the loaded settings.
func resizeConfig(cmd *cobra.Command, o Options, c config.Config) (batch.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("class") {
		c.Classes = o.Classes
	}
	if flags.Changed("tier") {
		c.Tiers = o.Tiers
	}
	if flags.Changed("kernel") {
		c.Kernel = o.Kernel
	}
	if flags.Changed("workers") {
		c.Workers = o.Workers
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	kernel, err := canvas.ParseKernel(c.Kernel)
	if err != nil {
		return batch.Config{}, err
	}
	return batch.Config{
		Layout:  c.Layout(),
		Classes: c.Classes,
		Tiers:   c.Tiers,
		Kernel:  kernel,
		Workers: c.Workers,
	}, nil
}

func runResize(cmd *cobra.Command, o Options) error {
	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	cfg, err := resizeConfig(cmd, o, settings)
	if err != nil {
		utils.ShowError("Invalid resize configuration", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		utils.ShowError("Invalid resize configuration", err)
		return err
	}

	fmt.Fprintf(errOut, "📂 Dataset root: %s\n", cfg.Layout.Root)
	fmt.Fprintf(errOut, "🎯 Tiers: %v  Kernel: %s  Workers: %d\n", cfg.Tiers, cfg.Kernel, cfg.Workers)

	run := beginLedger(ctx, store.KindResize, cfg.Layout.Root)
	driver := batch.New(cfg, &barProgress{w: errOut}, logger)
	report, runErr := driver.Run(ctx)
	if report == nil {
		utils.ShowError("Invalid resize configuration", runErr)
		return runErr
	}
	run.finish(ctx, report.Records(), report.Summary())

	printResizeSummary(cmd.OutOrStdout(), report)

	if runErr != nil {
		fmt.Fprintln(errOut, "\n🛑 Resize interrupted. Completed files are in place; re-run to finish.")
		return runErr
	}
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%s could not be resized", utils.Plural(n, "file"))
	}
	return nil
}

// barProgress renders one progress bar per (class, tier) batch.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Begin(class string, tier, total int) {
	if total == 0 {
		fmt.Fprintf(p.w, "🖐️  %s → %dx%d: no samples\n", class, tier, tier)
		p.bar = nil
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("🖐️  %s → %dx%d", class, tier, tier)),
		progressbar.OptionSetWriter(p.w), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)
}

func (p *barProgress) Advance(current, total int) {
	if p.bar != nil {
		_ = p.bar.Set(current)
	}
}

func (p *barProgress) End() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
	p.bar = nil
}

func printResizeSummary(w io.Writer, r *batch.Report) {
	utils.Banner(w, "📊 RESIZE SUMMARY")
	fmt.Fprintf(w, "✅ Written: %s\n", utils.Plural(len(r.Succeeded), "file"))

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "⏭️  Skipped: %s\n", utils.Plural(len(r.Skipped), "class"))
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "   - %s: %v\n", s.Class, s.Err)
		}
	}

	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "❌ Failed: %s\n", utils.Plural(len(r.Failed), "file"))
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "   CLASS\tTIER\tFILE\tCAUSE")
		for _, f := range r.Failed {
			fmt.Fprintf(tw, "   %s\t%d\t%s\t%s\n", f.Class, f.Tier, f.Name, utils.Truncate(f.Err.Error(), 80))
		}
		tw.Flush()
	}
}
