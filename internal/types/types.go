package types

import "time"

// Item identifies one (class, tier, file) unit of a resize batch.
type Item struct {
	Class string
	Tier  int
	Name  string
}

// Status is the outcome of a single ledger item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusDeleted Status = "deleted"
)

// ItemRecord is one row of the run ledger. Tier is 0 for sync runs and for
// skipped classes; Side is empty for resize runs.
type ItemRecord struct {
	Class  string
	Tier   int
	Side   string
	Name   string
	Status Status
	Error  string
}

// RunSummary is the aggregate stored when a run finishes.
type RunSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Run is a ledger entry as returned by the store.
type Run struct {
	ID         int64
	Kind       string
	Root       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    RunSummary
}
