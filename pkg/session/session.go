// Package session holds the state of one operator sitting at a worker: the
// last scan, the current selection, and the collaborators that act on them.
package session

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/inventory"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/selection"
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownCandidate is returned when toggling a lot the last scan did not list
var ErrUnknownCandidate = errors.Base("unknown lot")

// 🖼️ Renderer displays session state; the session never draws anything itself
type Renderer interface {
	RenderCandidates(candidates []inventory.Candidate)
	RenderSelection(entries []selection.Entry)
}

type nopRenderer struct{}

func (nopRenderer) RenderCandidates([]inventory.Candidate) {}
func (nopRenderer) RenderSelection([]selection.Entry)      {}

// 🚀 BatchRunner runs a confirmed list of lots
type BatchRunner interface {
	RunBatch(ctx context.Context, targets []string, confirmed bool) (*operation.Report, error)
}

// 🔧 Options contains configuration for a session
type Options struct {
	SourceRoot string
	Ledger     inventory.Membership
	Batch      BatchRunner
	Renderer   Renderer // optional
	Ignore     []string // doublestar patterns of lot names to hide
}

// 🎮 Session owns the candidate list and the selection
type Session struct {
	sourceRoot string
	ledger     inventory.Membership
	batch      BatchRunner
	renderer   Renderer
	ignore     []string

	candidates []inventory.Candidate
	selected   selection.Set
}

// 🏭 New creates a new session with the given options
func New(opts Options) (*Session, error) {
	if opts.SourceRoot == "" {
		return nil, errors.Errorf("source root is required")
	}
	if opts.Ledger == nil {
		return nil, errors.Errorf("ledger is required")
	}
	if opts.Batch == nil {
		return nil, errors.Errorf("batch runner is required")
	}

	s := &Session{
		sourceRoot: opts.SourceRoot,
		ledger:     opts.Ledger,
		batch:      opts.Batch,
		renderer:   opts.Renderer,
		ignore:     opts.Ignore,
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	return s, nil
}

// 🔎 Scan clears the selection and reloads the unprocessed lots. On failure
// the candidate list is emptied.
func (s *Session) Scan(ctx context.Context) ([]inventory.Candidate, error) {
	s.selected.Reset()
	s.renderer.RenderSelection(nil)

	candidates, err := inventory.Scan(ctx, s.sourceRoot, s.ledger, inventory.WithIgnore(s.ignore...))
	if err != nil {
		s.candidates = nil
		s.renderer.RenderCandidates(nil)
		return nil, err
	}

	s.candidates = candidates
	s.renderer.RenderCandidates(s.Candidates())

	zerolog.Ctx(ctx).Debug().Int("candidates", len(candidates)).Msg("inventory loaded")
	return s.Candidates(), nil
}

// Candidates returns the lots listed by the last scan
func (s *Session) Candidates() []inventory.Candidate {
	out := make([]inventory.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Selection returns the current selection in selection order
func (s *Session) Selection() []selection.Entry {
	return s.selected.Entries()
}

// 🔀 ToggleSelection selects or deselects a lot from the last scan and
// reports whether it is selected afterwards
func (s *Session) ToggleSelection(id string) (bool, error) {
	c, ok := s.candidate(id)
	if !ok {
		return false, errors.Errorf("toggling %s: %w", id, ErrUnknownCandidate)
	}

	selected, err := s.selected.Toggle(c)
	if err != nil {
		return false, err
	}
	s.renderer.RenderSelection(s.selected.Entries())
	return selected, nil
}

// SelectAllUnprocessed selects every lot of the last scan and returns how many
func (s *Session) SelectAllUnprocessed() int {
	s.selected.SelectAllUnprocessed(s.candidates)
	s.renderer.RenderSelection(s.selected.Entries())
	return s.selected.Len()
}

// 🚀 RunBatch consumes the selection, runs it, and rescans so migrated lots
// drop out of the list. Without confirmation the selection is kept and
// operation.ErrNotConfirmed is returned.
func (s *Session) RunBatch(ctx context.Context, confirmed bool) (*operation.Report, error) {
	if !confirmed {
		return nil, operation.ErrNotConfirmed
	}

	targets := selection.IDs(s.selected.Take())
	s.renderer.RenderSelection(nil)

	report, err := s.batch.RunBatch(ctx, targets, true)
	if err != nil {
		return nil, errors.Errorf("running batch: %w", err)
	}
	if report.NoTargets {
		return report, nil
	}

	if _, err := s.Scan(ctx); err != nil {
		return report, errors.Errorf("rescanning after batch: %w", err)
	}
	return report, nil
}

func (s *Session) candidate(id string) (inventory.Candidate, bool) {
	for _, c := range s.candidates {
		if c.ID == id {
			return c, true
		}
	}
	return inventory.Candidate{}, false
}
