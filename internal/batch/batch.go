// Package batch drives the canvas normalizer over a whole dataset.
//
// For every class (in configured order) and every tier (in configured
// order) each processing-format sample is normalized and written to
// <root>/<class>/<tier>/<name>. A failing file is recorded and the batch
// moves on; a class without a source tree is skipped.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/andresmejia3/gestureprep/internal/canvas"
	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/imageio"
	"github.com/andresmejia3/gestureprep/internal/logging"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/andresmejia3/gestureprep/internal/worker"
	"github.com/sirupsen/logrus"
)

// Config selects what a Driver processes.
type Config struct {
	Layout  dataset.Layout
	Classes []string
	Tiers   []int
	Kernel  canvas.Kernel
	Workers int
}

// Validate rejects configurations that cannot produce any valid output.
// These errors are fatal; nothing has been touched when they are returned.
func (c Config) Validate() error {
	if len(c.Classes) == 0 {
		return fmt.Errorf("no gesture classes configured")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("no target tiers configured")
	}

	seenTier := make(map[int]bool)
	for _, s := range c.Tiers {
		if s <= 0 {
			return &types.InvalidSizeError{Size: s}
		}
		if seenTier[s] {
			return fmt.Errorf("duplicate tier %d", s)
		}
		seenTier[s] = true
	}

	seenClass := make(map[string]bool)
	for _, class := range c.Classes {
		if err := dataset.ValidateClass(class); err != nil {
			return err
		}
		if seenClass[class] {
			return fmt.Errorf("duplicate class %q", class)
		}
		seenClass[class] = true
	}

	return c.Layout.Validate()
}

// Progress observes a batch. It never influences control flow.
// Advance is called with current strictly increasing from 1 to total.
type Progress interface {
	Begin(class string, tier, total int)
	Advance(current, total int)
	End()
}

type nopProgress struct{}

func (nopProgress) Begin(string, int, int) {}
func (nopProgress) Advance(int, int)       {}
func (nopProgress) End()                   {}

// Failure is a file that could not be normalized or written.
type Failure struct {
	types.Item
	Err error
}

// Skip is a class that was not processed at all.
type Skip struct {
	Class string
	Err   error
}

// Report is the outcome of a Driver run.
type Report struct {
	Succeeded []types.Item
	Failed    []Failure
	Skipped   []Skip
}

// Records flattens the report into ledger rows.
func (r *Report) Records() []types.ItemRecord {
	recs := make([]types.ItemRecord, 0, len(r.Succeeded)+len(r.Failed)+len(r.Skipped))
	for _, it := range r.Succeeded {
		recs = append(recs, types.ItemRecord{Class: it.Class, Tier: it.Tier, Name: it.Name, Status: types.StatusOK})
	}
	for _, f := range r.Failed {
		recs = append(recs, types.ItemRecord{Class: f.Class, Tier: f.Tier, Name: f.Name, Status: types.StatusFailed, Error: f.Err.Error()})
	}
	for _, s := range r.Skipped {
		recs = append(recs, types.ItemRecord{Class: s.Class, Status: types.StatusSkipped, Error: s.Err.Error()})
	}
	return recs
}

// Summary returns the aggregate counts.
func (r *Report) Summary() types.RunSummary {
	return types.RunSummary{Succeeded: len(r.Succeeded), Failed: len(r.Failed), Skipped: len(r.Skipped)}
}

// Driver runs the resize pipeline.
type Driver struct {
	cfg      Config
	progress Progress
	log      logrus.FieldLogger
}

// New creates a Driver. A nil progress or logger disables that output.
func New(cfg Config, progress Progress, log logrus.FieldLogger) *Driver {
	if progress == nil {
		progress = nopProgress{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Driver{cfg: cfg, progress: progress, log: log}
}

// Run processes every configured class. The returned report is never nil
// once validation has passed, even when ctx is cancelled part-way.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, class := range d.cfg.Classes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := d.runClass(ctx, class, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (d *Driver) runClass(ctx context.Context, class string, report *Report) error {
	layout := d.cfg.Layout
	src := layout.ProcessPath(class)
	log := d.log.WithField("class", class)
	log.WithField("path", src).Info("Entering class")

	names, err := dataset.ListNames(src)
	if err != nil {
		var merr *types.MissingDirectoryError
		if errors.As(err, &merr) {
			log.WithField("path", src).Warn("Source tree missing, skipping class")
		} else {
			log.WithError(err).Warn("Source tree unreadable, skipping class")
		}
		report.Skipped = append(report.Skipped, Skip{Class: class, Err: err})
		return nil
	}

	lock, err := dataset.Lock(layout.ClassPath(class))
	if err != nil {
		log.WithError(err).Warn("Could not lock class, skipping")
		report.Skipped = append(report.Skipped, Skip{Class: class, Err: err})
		return nil
	}
	defer lock.Unlock()

	for _, tier := range d.cfg.Tiers {
		if err := d.runBatch(ctx, class, tier, src, names, report); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) runBatch(ctx context.Context, class string, tier int, src string, names []string, report *Report) error {
	dst := d.cfg.Layout.TierPath(class, tier)
	log := d.log.WithFields(logrus.Fields{"class": class, "tier": tier})

	if err := os.MkdirAll(dst, 0755); err != nil {
		werr := &types.WriteError{Path: dst, Err: err}
		log.WithError(werr).Error("Cannot create tier directory")
		for _, name := range names {
			report.Failed = append(report.Failed, Failure{Item: types.Item{Class: class, Tier: tier, Name: name}, Err: werr})
		}
		return nil
	}
	log.WithField("path", dst).Info("Target directory ready")

	total := len(names)
	outcomes := make([]error, total)
	ran := make([]bool, total)

	d.progress.Begin(class, tier, total)
	var mu sync.Mutex
	done := 0

	runErr := worker.Pool{Size: d.cfg.Workers}.Run(ctx, total, func(i int) {
		name := names[i]
		err := d.resizeOne(filepath.Join(src, name), filepath.Join(dst, name), tier)
		if err != nil {
			log.WithField("file", name).WithError(err).Error("Resize failed")
		}
		outcomes[i] = err
		ran[i] = true

		mu.Lock()
		done++
		d.progress.Advance(done, total)
		mu.Unlock()
	})
	d.progress.End()

	for i, name := range names {
		if !ran[i] {
			continue
		}
		item := types.Item{Class: class, Tier: tier, Name: name}
		if outcomes[i] != nil {
			report.Failed = append(report.Failed, Failure{Item: item, Err: outcomes[i]})
		} else {
			report.Succeeded = append(report.Succeeded, item)
		}
	}
	return runErr
}

// resizeOne normalizes one source file and atomically replaces dst.
// Nothing is written unless the source decoded and normalized cleanly.
func (d *Driver) resizeOne(src, dst string, tier int) error {
	img, err := canvas.NormalizeFile(src, tier, d.cfg.Kernel)
	if err != nil {
		return err
	}
	return imageio.WriteAtomic(dst, img)
}
