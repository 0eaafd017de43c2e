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

// Package ledger records which lots have been fully migrated.
//
// The backing store is a plain text file with one lot id per line. Complete
// lines are only ever appended; a torn trailing fragment is dropped on the
// next append. A lot is processed iff a complete line equal to its id
// exists. Membership checks scan the whole file, which is fine for the
// hundreds-to-thousands of entries a deployment accumulates.
//
// There is no locking: a ledger has a single writer.
package ledger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidID is returned for ids that cannot be stored as a single line.
var ErrInvalidID = errors.Base("invalid ledger id")

// 📒 Ledger is an append-only completion log
type Ledger struct {
	path string
}

// 💥 WriteError is returned when an append could not be made durable
type WriteError struct {
	ID  string
	Err error
}

func (e *WriteError) Error() string {
	return "appending " + e.ID + " to ledger: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// 🏭 Open returns the ledger at path, creating an empty one if it does not exist.
// An existing file is never truncated.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.Errorf("ledger path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Errorf("creating ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.Errorf("opening ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Errorf("closing ledger: %w", err)
	}

	return &Ledger{path: path}, nil
}

// Path returns the location of the backing file.
func (l *Ledger) Path() string {
	return l.path
}

// 🔍 Contains reports whether id has a complete entry in the ledger
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry == id {
			return true, nil
		}
	}
	return false, nil
}

// 📋 Entries returns every complete entry in append order.
// A trailing line without a newline is a torn write and is skipped.
func (l *Ledger) Entries(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Errorf("reading ledger: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	// the last element is either empty or a torn fragment
	complete := lines[:len(lines)-1]
	if tail := lines[len(lines)-1]; tail != "" {
		zerolog.Ctx(ctx).Warn().Str("path", l.path).Str("fragment", tail).Msg("ignoring torn ledger line")
	}

	entries := make([]string, 0, len(complete))
	for _, line := range complete {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries, nil
}

// ✍️ Append durably records id as migrated.
// The record is written with a single write followed by a sync.
func (l *Ledger) Append(ctx context.Context, id string) error {
	if id == "" || strings.ContainsAny(id, "\r\n") {
		return errors.Errorf("%w: %q", ErrInvalidID, id)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return &WriteError{ID: id, Err: err}
	}
	defer f.Close()

	complete, size, err := completeLength(f)
	if err != nil {
		return &WriteError{ID: id, Err: err}
	}
	if complete < size {
		// the fragment was never an entry; a newline would make it one
		zerolog.Ctx(ctx).Warn().Str("path", l.path).Int64("bytes", size-complete).Msg("dropping torn ledger line")
		if err := f.Truncate(complete); err != nil {
			return &WriteError{ID: id, Err: err}
		}
	}

	record := []byte(id + "\n")

	if _, err := f.Write(record); err != nil {
		return &WriteError{ID: id, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &WriteError{ID: id, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{ID: id, Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("path", l.path).Str("id", id).Msg("ledger entry appended")
	return nil
}

// completeLength returns the length of the file up to and including its
// last newline, and the file size. They differ when the file ends torn.
func completeLength(f *os.File) (int64, int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	size := info.Size()

	buf := make([]byte, 4096)
	for end := size; end > 0; {
		n := min(int64(len(buf)), end)
		start := end - n
		if _, err := f.ReadAt(buf[:n], start); err != nil {
			return 0, 0, err
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			return start + int64(i) + 1, size, nil
		}
		end = start
	}
	return 0, size, nil
}
