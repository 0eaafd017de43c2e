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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/status"
	"github.com/walteh/lotmig/pkg/store"
	"gitlab.com/tozd/go/errors"
)

// 📡 AuditSink receives a copy of every audit line
type AuditSink interface {
	AppendLog(ctx context.Context, entry store.LogEntry) error
}

// 🔧 Options configures a Logger
type Options struct {
	Console   io.Writer        // colored lines for the operator; defaults to io.Discard
	Audit     io.Writer        // JSON audit lines; defaults to io.Discard
	Sink      AuditSink        // remote audit log; optional
	Worker    status.Worker    // who did the work
	Formatter status.Formatter // defaults to status.DefaultFormatter
	Now       func() time.Time // defaults to time.Now
}

// 🎯 Logger writes the audit trail of a batch: one console line, one local
// JSON line and one remote audit line per lot
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	sink      AuditSink
	worker    status.Worker
	formatter status.Formatter
	now       func() time.Time
	mu        sync.Mutex
}

var _ operation.Recorder = (*Logger)(nil)

// 🏭 New creates a new logger
func New(opts Options) *Logger {
	l := &Logger{
		console:   opts.Console,
		sink:      opts.Sink,
		worker:    opts.Worker,
		formatter: opts.Formatter,
		now:       opts.Now,
	}
	if l.console == nil {
		l.console = io.Discard
	}
	if l.sink == nil {
		l.sink = store.Nop{}
	}
	if l.formatter == nil {
		l.formatter = status.NewDefaultFormatter()
	}
	if l.now == nil {
		l.now = time.Now
	}

	audit := opts.Audit
	if audit == nil {
		audit = io.Discard
	}
	l.zlog = zerolog.New(audit).With().
		Str("host", opts.Worker.Host).
		Str("user", opts.Worker.User).
		Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			e.Time(zerolog.TimestampFieldName, l.now())
		}))

	return l
}

// 📂 OpenAuditFile opens path for appending, creating it and its directory
func OpenAuditFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Errorf("creating audit log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Errorf("opening audit log: %w", err)
	}
	return f, nil
}

// RenamedMessage is the audit text for a migrated lot.
func RenamedMessage(w status.Worker, lot string) string {
	return fmt.Sprintf("【%s】【%s】Renamed JPEG for %s", w.Host, w.User, lot)
}

// 📝 Record writes the audit trail of one batch outcome
func (l *Logger) Record(ctx context.Context, runID string, outcome operation.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		event   *zerolog.Event
		message string
		errText string
		detail  string
	)

	switch outcome.Kind {
	case operation.OutcomeMigrated:
		message = RenamedMessage(l.worker, outcome.ID)
		event = l.zlog.Info().Int("files", outcome.Files)
		detail = fmt.Sprintf("%d files", outcome.Files)
	case operation.OutcomeSkipped:
		message = l.formatter.FormatSkipped(outcome.ID)
		event = l.zlog.Info()
		detail = "already processed"
	default:
		message = l.formatter.FormatFailed(outcome.ID, nil)
		event = l.zlog.Error().Err(outcome.Err)
		if outcome.Err != nil {
			errText = outcome.Err.Error()
			detail = errText
		}
	}

	fmt.Fprintln(l.console, status.FormatLotOperation(
		outcome.ID,
		outcome.Kind.String(),
		detail,
		outcome.Kind == operation.OutcomeMigrated,
		outcome.Kind == operation.OutcomeFailed,
		outcome.Kind == operation.OutcomeSkipped,
	))

	event.Str("run_id", runID).
		Str("lot", outcome.ID).
		Stringer("outcome", outcome.Kind).
		Msg(message)

	l.forward(ctx, store.LogEntry{Time: l.now(), Message: message, Error: errText})

	if outcome.LedgerErr != nil {
		warning := fmt.Sprintf("%s copied but not recorded; it will be redone on the next run", outcome.ID)
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(warning))
		l.zlog.Warn().
			Err(outcome.LedgerErr).
			Str("run_id", runID).
			Str("lot", outcome.ID).
			Msg(warning)
		l.forward(ctx, store.LogEntry{Time: l.now(), Message: warning, Error: outcome.LedgerErr.Error()})
	}
}

// forward sends entry to the remote audit log; failures stay local
func (l *Logger) forward(ctx context.Context, entry store.LogEntry) {
	if err := l.sink.AppendLog(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("remote audit log unreachable")
	}
}

// 📊 Summary prints the closing line of a batch
func (l *Logger) Summary(report *operation.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if report.NoTargets {
		fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint("no lots selected"))
		return
	}
	fmt.Fprintf(l.console, "\n%s %s\n",
		color.New(color.Faint).Sprint("run "+report.RunID+" •"),
		status.FormatSummary(report.Migrated(), report.Failed(), report.Skipped()))
}

// ✋ Cancelled records that the operator declined a batch of n lots
func (l *Logger) Cancelled(ctx context.Context, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := fmt.Sprintf("batch of %d lot(s) cancelled; nothing was migrated", n)
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(message))
	l.zlog.Info().Int("lots", n).Msg(message)
	l.forward(ctx, store.LogEntry{Time: l.now(), Message: message})
}
