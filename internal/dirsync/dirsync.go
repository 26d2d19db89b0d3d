// Package dirsync reconciles two directory trees that must hold the same
// set of file names, such as the BMP and PGM trees of a gesture class.
//
// Compare is read-only and repeatable. Sync deletes the entries present on
// only one side, and only after a Prompter returns Proceed. A completed
// Sync is a fixed point: comparing again yields an empty Diff.
package dirsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/andresmejia3/gestureprep/internal/logging"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/sirupsen/logrus"
)

// Side names one of the two compared trees.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Diff is the symmetric difference of two directories' member names.
type Diff struct {
	A, B   string
	OnlyA  []string
	OnlyB  []string
	Common int
}

// Compare lists both directories and computes their difference.
// Both must exist; otherwise a *types.MissingDirectoryError is returned
// before anything else is read.
func Compare(a, b string) (*Diff, error) {
	for _, dir := range []string{a, b} {
		if err := dataset.RequireDir(dir); err != nil {
			return nil, err
		}
	}

	absA, err := filepath.Abs(a)
	if err != nil {
		return nil, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return nil, err
	}

	namesA, err := dataset.ListNames(absA)
	if err != nil {
		return nil, err
	}
	namesB, err := dataset.ListNames(absB)
	if err != nil {
		return nil, err
	}

	d := &Diff{A: absA, B: absB}
	inB := make(map[string]bool, len(namesB))
	for _, n := range namesB {
		inB[n] = true
	}
	inA := make(map[string]bool, len(namesA))
	for _, n := range namesA {
		inA[n] = true
		if inB[n] {
			d.Common++
		} else {
			d.OnlyA = append(d.OnlyA, n)
		}
	}
	for _, n := range namesB {
		if !inA[n] {
			d.OnlyB = append(d.OnlyB, n)
		}
	}
	return d, nil
}

// Empty reports whether the two trees already match.
func (d *Diff) Empty() bool {
	return len(d.OnlyA) == 0 && len(d.OnlyB) == 0
}

// Deletion is one removed file.
type Deletion struct {
	Side Side
	Name string
	Path string
}

// Result is the outcome of a Sync.
type Result struct {
	Diff        *Diff
	NothingToDo bool
	Aborted     bool
	Deleted     []Deletion
	Failed      []*types.DeletionError
}

// Synchronizer deletes the asymmetric entries of two trees after
// confirmation.
type Synchronizer struct {
	Prompter Prompter
	Log      logrus.FieldLogger
	// OnDiff, if set, is called once the difference is known and before
	// any prompt.
	OnDiff func(*Diff)
	// OnDelete, if set, is called after each successful removal.
	OnDelete func(Deletion)
}

// Sync compares a and b and, if they differ and the prompter agrees,
// removes every name found on only one side from that side.
func (s *Synchronizer) Sync(ctx context.Context, a, b string) (*Result, error) {
	diff, err := Compare(a, b)
	if err != nil {
		return nil, err
	}

	log := s.logger().WithFields(logrus.Fields{"a": diff.A, "b": diff.B})
	log.WithFields(logrus.Fields{"only_a": len(diff.OnlyA), "only_b": len(diff.OnlyB), "common": diff.Common}).Info("Compared trees")
	if s.OnDiff != nil {
		s.OnDiff(diff)
	}

	res := &Result{Diff: diff}
	if diff.Empty() {
		res.NothingToDo = true
		return res, nil
	}

	question := fmt.Sprintf("Delete %d file(s) from %s and %d file(s) from %s?", len(diff.OnlyA), diff.A, len(diff.OnlyB), diff.B)
	proceed, err := s.confirm(question)
	if err != nil {
		log.WithError(err).Warn("Confirmation failed, nothing deleted")
		res.Aborted = true
		return res, nil
	}
	if !proceed {
		log.Info("Synchronization declined")
		res.Aborted = true
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		res.Aborted = true
		return res, err
	}

	deleted, failed := diff.Apply(s.Log, s.OnDelete)
	res.Deleted = deleted
	res.Failed = failed
	return res, nil
}

func (s *Synchronizer) confirm(question string) (bool, error) {
	if s.Prompter == nil {
		return false, fmt.Errorf("no prompter configured")
	}
	for {
		decision, err := s.Prompter.Confirm(question)
		if err != nil {
			return false, err
		}
		switch decision {
		case Proceed:
			return true, nil
		case Abort:
			return false, nil
		}
	}
}

func (s *Synchronizer) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logging.Discard()
	}
	return s.Log
}

// Apply removes OnlyA from A and OnlyB from B, one file at a time.
// A failed removal is collected and the remaining files are still tried.
func (d *Diff) Apply(log logrus.FieldLogger, onDelete func(Deletion)) ([]Deletion, []*types.DeletionError) {
	if log == nil {
		log = logging.Discard()
	}

	var deleted []Deletion
	var failed []*types.DeletionError
	remove := func(side Side, dir string, names []string) {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if err := os.Remove(path); err != nil {
				derr := &types.DeletionError{Path: path, Err: err}
				log.WithFields(logrus.Fields{"side": side, "path": path}).WithError(err).Error("Delete failed")
				failed = append(failed, derr)
				continue
			}
			del := Deletion{Side: side, Name: name, Path: path}
			log.WithFields(logrus.Fields{"side": side, "path": path}).Info("Deleted")
			deleted = append(deleted, del)
			if onDelete != nil {
				onDelete(del)
			}
		}
	}
	remove(SideA, d.A, d.OnlyA)
	remove(SideB, d.B, d.OnlyB)
	return deleted, failed
}
