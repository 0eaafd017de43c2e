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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/status"
	"github.com/walteh/lotmig/pkg/store"
)

// 🔧 MockAuditSink is a mock implementation of AuditSink
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) AppendLog(ctx context.Context, entry store.LogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

var (
	testWorker = status.Worker{Host: "PC01", User: "JDOE"}
	testTime   = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
)

func newTestLogger(sink AuditSink) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	console := &bytes.Buffer{}
	audit := &bytes.Buffer{}
	l := New(Options{
		Console: console,
		Audit:   audit,
		Sink:    sink,
		Worker:  testWorker,
		Now:     func() time.Time { return testTime },
	})
	return l, console, audit
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), "audit line should be JSON: %s", line)
		out = append(out, m)
	}
	return out
}

func TestRecord(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name        string
		outcome     operation.Outcome
		wantConsole []string
		wantLevels  []string
		wantMessage string
		wantEntries []store.LogEntry
	}{
		{
			name:        "migrated",
			outcome:     operation.Outcome{ID: "LOT7", Kind: operation.OutcomeMigrated, Files: 12},
			wantConsole: []string{"✓ LOT7"},
			wantLevels:  []string{"info"},
			wantMessage: "【PC01】【JDOE】Renamed JPEG for LOT7",
			wantEntries: []store.LogEntry{
				{Time: testTime, Message: "【PC01】【JDOE】Renamed JPEG for LOT7"},
			},
		},
		{
			name:        "failed",
			outcome:     operation.Outcome{ID: "LOT8", Kind: operation.OutcomeFailed, Err: errors.New("locate LOT8/G2: not found")},
			wantConsole: []string{"✗ LOT8"},
			wantLevels:  []string{"error"},
			wantMessage: "❌ Failed LOT8",
			wantEntries: []store.LogEntry{
				{Time: testTime, Message: "❌ Failed LOT8", Error: "locate LOT8/G2: not found"},
			},
		},
		{
			name:        "skipped",
			outcome:     operation.Outcome{ID: "LOT9", Kind: operation.OutcomeSkipped},
			wantConsole: []string{"⟳ LOT9"},
			wantLevels:  []string{"info"},
			wantMessage: "👍 Skipped LOT9 (already processed)",
			wantEntries: []store.LogEntry{
				{Time: testTime, Message: "👍 Skipped LOT9 (already processed)"},
			},
		},
		{
			name:        "migrated_but_not_recorded",
			outcome:     operation.Outcome{ID: "LOT7", Kind: operation.OutcomeMigrated, Files: 1, LedgerErr: errors.New("disk full")},
			wantConsole: []string{"✓ LOT7", "⚠️  LOT7 copied but not recorded"},
			wantLevels:  []string{"info", "warn"},
			wantMessage: "【PC01】【JDOE】Renamed JPEG for LOT7",
			wantEntries: []store.LogEntry{
				{Time: testTime, Message: "【PC01】【JDOE】Renamed JPEG for LOT7"},
				{Time: testTime, Message: "LOT7 copied but not recorded; it will be redone on the next run", Error: "disk full"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &MockAuditSink{}
			for _, e := range tt.wantEntries {
				sink.On("AppendLog", mock.Anything, e).Return(nil).Once()
			}

			l, console, audit := newTestLogger(sink)
			l.Record(context.Background(), "run-1", tt.outcome)

			lines := strings.Split(strings.TrimSpace(console.String()), "\n")
			require.Len(t, lines, len(tt.wantConsole))
			for i, want := range tt.wantConsole {
				assert.Contains(t, lines[i], want)
			}

			records := decodeLines(t, audit)
			require.Len(t, records, len(tt.wantLevels))
			for i, level := range tt.wantLevels {
				assert.Equal(t, level, records[i]["level"])
				assert.Equal(t, "run-1", records[i]["run_id"])
				assert.Equal(t, tt.outcome.ID, records[i]["lot"])
				assert.Equal(t, "PC01", records[i]["host"])
				assert.Equal(t, "JDOE", records[i]["user"])
				assert.NotEmpty(t, records[i]["time"])
			}
			assert.Equal(t, tt.wantMessage, records[0]["message"])

			sink.AssertExpectations(t)
		})
	}
}

func TestRecordSinkFailureStaysLocal(t *testing.T) {
	sink := &MockAuditSink{}
	sink.On("AppendLog", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	l, console, audit := newTestLogger(sink)
	assert.NotPanics(t, func() {
		l.Record(context.Background(), "run-1", operation.Outcome{ID: "LOT7", Kind: operation.OutcomeMigrated})
	})

	assert.NotEmpty(t, console.String())
	assert.Len(t, decodeLines(t, audit), 1)
}

func TestRecordWithoutSink(t *testing.T) {
	l := New(Options{Worker: testWorker})
	assert.NotPanics(t, func() {
		l.Record(context.Background(), "run-1", operation.Outcome{ID: "LOT7", Kind: operation.OutcomeFailed})
	})
}

func TestOpenAuditFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "record.log")

	for i := range 2 {
		f, err := OpenAuditFile(path)
		require.NoError(t, err)
		l := New(Options{Audit: f, Worker: testWorker, Now: func() time.Time { return testTime }})
		l.Record(context.Background(), "run", operation.Outcome{ID: []string{"LOT1", "LOT2"}[i], Kind: operation.OutcomeMigrated})
		require.NoError(t, f.Close())
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2, "reopening must append, not truncate")
	assert.Contains(t, lines[0], "Renamed JPEG for LOT1")
	assert.Contains(t, lines[1], "Renamed JPEG for LOT2")
}

func TestSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name   string
		report *operation.Report
		want   string
	}{
		{
			name:   "no_targets",
			report: &operation.Report{RunID: "r", NoTargets: true},
			want:   "ℹ️  no lots selected",
		},
		{
			name: "mixed",
			report: &operation.Report{RunID: "r", Outcomes: []operation.Outcome{
				{ID: "X", Kind: operation.OutcomeMigrated},
				{ID: "Y", Kind: operation.OutcomeFailed},
				{ID: "Z", Kind: operation.OutcomeMigrated},
			}},
			want: "run r • 2 migrated, 1 failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, console, _ := newTestLogger(nil)
			l.Summary(tt.report)
			assert.Equal(t, tt.want, strings.TrimSpace(console.String()))
		})
	}
}

func TestCancelled(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	sink := &MockAuditSink{}
	sink.On("AppendLog", mock.Anything, store.LogEntry{
		Time:    testTime,
		Message: "batch of 3 lot(s) cancelled; nothing was migrated",
	}).Return(nil).Once()

	l, console, audit := newTestLogger(sink)
	l.Cancelled(context.Background(), 3)

	assert.Equal(t, "ℹ️  batch of 3 lot(s) cancelled; nothing was migrated", strings.TrimSpace(console.String()))

	lines := decodeLines(t, audit)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, float64(3), lines[0]["lots"])
	assert.Equal(t, "PC01", lines[0]["host"])

	sink.AssertExpectations(t)
}

func TestRenamedMessage(t *testing.T) {
	assert.Equal(t, "【PC01】【JDOE】Renamed JPEG for LOT7", RenamedMessage(testWorker, "LOT7"))
}
