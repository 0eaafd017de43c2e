// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 BatchOptions contains configuration for a batch
type BatchOptions struct {
	// Ledger records completed lots
	Ledger Ledger
	// Migrator moves one lot
	Migrator Migrator
	// Recorder receives outcomes; optional
	Recorder Recorder
	// Formatter phrases progress; optional
	Formatter status.Formatter

	SourceRoot string
	DestRoot   string

	// NewRunID generates batch ids; defaults to UUIDv7
	NewRunID func() string
}

// 🎮 Batch runs confirmed sets of lots through the migrator and the ledger
type Batch struct {
	ledger     Ledger
	migrator   Migrator
	recorder   Recorder
	formatter  status.Formatter
	sourceRoot string
	destRoot   string
	newRunID   func() string
}

// 🏭 NewBatch creates a new batch with the given options
func NewBatch(opts BatchOptions) (*Batch, error) {
	if opts.Ledger == nil {
		return nil, errors.Errorf("ledger is required")
	}
	if opts.Migrator == nil {
		return nil, errors.Errorf("migrator is required")
	}
	if opts.SourceRoot == "" {
		return nil, errors.Errorf("source root is required")
	}
	if opts.DestRoot == "" {
		return nil, errors.Errorf("destination root is required")
	}

	b := &Batch{
		ledger:     opts.Ledger,
		migrator:   opts.Migrator,
		recorder:   opts.Recorder,
		formatter:  opts.Formatter,
		sourceRoot: opts.SourceRoot,
		destRoot:   opts.DestRoot,
		newRunID:   opts.NewRunID,
	}
	if b.recorder == nil {
		b.recorder = nopRecorder{}
	}
	if b.formatter == nil {
		b.formatter = status.NewDefaultFormatter()
	}
	if b.newRunID == nil {
		b.newRunID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	return b, nil
}

// 🚀 RunBatch migrates targets in order. confirmed must carry the operator's
// go-ahead; without it nothing happens and ErrNotConfirmed is returned. An
// empty target list returns a report with NoTargets set.
//
// A failing lot is recorded and the batch moves on. A lot is appended to the
// ledger only after it migrated; lots already in the ledger are skipped.
func (b *Batch) RunBatch(ctx context.Context, targets []string, confirmed bool) (*Report, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	report := &Report{RunID: b.newRunID()}

	logger := zerolog.Ctx(ctx).With().Str("run_id", report.RunID).Logger()
	ctx = logger.WithContext(ctx)

	if len(targets) == 0 {
		logger.Info().Msg("no lots selected")
		report.NoTargets = true
		return report, nil
	}

	progress := status.NewProgress(b.formatter)
	progress.Start(&logger, len(targets))

	for i, id := range targets {
		outcome := b.runOne(ctx, id)
		report.Outcomes = append(report.Outcomes, outcome)
		b.recorder.Record(ctx, report.RunID, outcome)
		progress.Update(&logger, i+1)
	}

	logger.Info().
		Int("migrated", report.Migrated()).
		Int("failed", report.Failed()).
		Int("skipped", report.Skipped()).
		Msg("batch finished")

	return report, nil
}

func (b *Batch) runOne(ctx context.Context, id string) Outcome {
	logger := zerolog.Ctx(ctx).With().Str("lot", id).Logger()

	// selection is re-validated here in case the ledger moved since the scan
	done, err := b.ledger.Contains(ctx, id)
	if err != nil {
		return Outcome{ID: id, Kind: OutcomeFailed, Err: errors.Errorf("checking ledger: %w", err)}
	}
	if done {
		logger.Info().Msg(b.formatter.FormatSkipped(id))
		return Outcome{ID: id, Kind: OutcomeSkipped}
	}

	result, err := b.migrator.Migrate(ctx, b.sourceRoot, b.destRoot, id)
	if err != nil {
		logger.Error().Err(err).Msg(b.formatter.FormatFailed(id, nil))
		return Outcome{ID: id, Kind: OutcomeFailed, Err: err}
	}

	outcome := Outcome{ID: id, Kind: OutcomeMigrated, Files: len(result.Files)}
	if err := b.ledger.Append(ctx, id); err != nil {
		logger.Warn().Err(err).Msg("lot copied but not recorded; it will be redone on the next run")
		outcome.LedgerErr = err
		return outcome
	}
	logger.Info().Int("files", outcome.Files).Msg(b.formatter.FormatMigrated(id, outcome.Files))
	return outcome
}
