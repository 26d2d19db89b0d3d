package cmd

import (
	"context"

	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/sirupsen/logrus"
)

// ledgerRun tracks one run in the optional ledger. A nil *ledgerRun is
// valid and records nothing.
type ledgerRun struct {
	id  int64
	log logrus.FieldLogger
}

// beginLedger registers a run when a ledger is configured. Ledger errors
// are logged and never stop the pipeline.
func beginLedger(ctx context.Context, kind, root string) *ledgerRun {
	if DB == nil {
		return nil
	}
	log := logger.WithFields(logrus.Fields{"kind": kind, "root": root})
	id, err := DB.BeginRun(context.WithoutCancel(ctx), kind, root)
	if err != nil {
		log.WithError(err).Warn("Could not register run in ledger")
		return nil
	}
	return &ledgerRun{id: id, log: log.WithField("run", id)}
}

func (l *ledgerRun) finish(ctx context.Context, items []types.ItemRecord, sum types.RunSummary) {
	if l == nil || DB == nil {
		return
	}
	// The run may have been interrupted; the ledger should still see what happened.
	ctx = context.WithoutCancel(ctx)
	if err := DB.RecordItems(ctx, l.id, items); err != nil {
		l.log.WithError(err).Warn("Could not record run items")
	}
	if err := DB.FinishRun(ctx, l.id, sum); err != nil {
		l.log.WithError(err).Warn("Could not finish run in ledger")
	}
}
