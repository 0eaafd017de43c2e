package operation

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound is the cause of a locate failure
	ErrNotFound = errors.Base("not found")

	// ErrNotConfirmed is returned when a batch is run without operator confirmation
	ErrNotConfirmed = errors.Base("batch not confirmed")
)

// 📍 Phase is the migration step a failure happened in
type Phase string

const (
	PhaseList      Phase = "list"
	PhaseLocate    Phase = "locate"
	PhaseNameParse Phase = "name-parse"
	PhaseCopy      Phase = "copy"
)

// 💥 MigrateError aborts the migration of a single lot
type MigrateError struct {
	Phase    Phase
	Lot      string
	DieGroup string // empty when the failure is not specific to a group
	Path     string
	Err      error
}

func (e *MigrateError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Phase))
	b.WriteString(" ")
	b.WriteString(e.Lot)
	if e.DieGroup != "" {
		b.WriteString("/")
		b.WriteString(e.DieGroup)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *MigrateError) Unwrap() error {
	return e.Err
}

// 🔄 Migrator moves one lot from the source tree to the destination tree
type Migrator interface {
	Migrate(ctx context.Context, sourceRoot, destRoot, lot string) (*MigrateResult, error)
}

// 📒 Ledger is the completion log a batch consults and appends to
type Ledger interface {
	Contains(ctx context.Context, id string) (bool, error)
	Append(ctx context.Context, id string) error
}

// 📝 Recorder receives every outcome of a batch, in order
type Recorder interface {
	Record(ctx context.Context, runID string, outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, Outcome) {}

// 📊 OutcomeKind is the result class of one lot in a batch
type OutcomeKind int

const (
	OutcomeMigrated OutcomeKind = iota
	OutcomeFailed
	OutcomeSkipped
)

// String returns a string representation of OutcomeKind
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMigrated:
		return "migrated"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of one lot in a batch.
type Outcome struct {
	ID    string
	Kind  OutcomeKind
	Err   error // reason, set for OutcomeFailed
	Files int   // files copied, set for OutcomeMigrated

	// LedgerErr is set when the lot was copied but could not be recorded.
	// The lot stays unprocessed and is redone on the next run.
	LedgerErr error
}

// 📋 Report is the result of one batch
type Report struct {
	RunID     string
	Outcomes  []Outcome
	NoTargets bool // nothing was selected; no work was done
}

// Migrated returns the number of migrated lots
func (r *Report) Migrated() int { return r.count(OutcomeMigrated) }

// Failed returns the number of failed lots
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

// Skipped returns the number of lots that were already in the ledger
func (r *Report) Skipped() int { return r.count(OutcomeSkipped) }

func (r *Report) count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
