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

package inventory

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Status is derived from the ledger at scan time and never stored
type Status int

const (
	Unprocessed Status = iota
	Processed
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case Unprocessed:
		return "Unprocessed"
	case Processed:
		return "Processed"
	default:
		return "unknown"
	}
}

// 📦 Candidate is one source lot
type Candidate struct {
	ID     string // lot name, the basename of its source directory
	Status Status
}

// 🔍 Membership answers whether a lot has already been migrated
type Membership interface {
	Contains(ctx context.Context, id string) (bool, error)
}

// 💥 ScanError means the inventory could not be built
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return "scanning " + e.Root + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

type options struct {
	ignore []string
}

// Option configures a scan
type Option func(*options)

// WithIgnore skips lot directories whose name matches any doublestar pattern
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// 🔎 Scan lists the unprocessed lots directly under sourceRoot.
// Processed lots are filtered out entirely. Order follows the directory listing.
func Scan(ctx context.Context, sourceRoot string, ledger Membership, opts ...Option) ([]Candidate, error) {
	logger := zerolog.Ctx(ctx)

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, &ScanError{Root: sourceRoot, Err: err}
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()

		isDir, err := isDirectory(sourceRoot, entry)
		if err != nil {
			logger.Debug().Err(err).Str("entry", name).Msg("skipping unreadable entry")
			continue
		}
		if !isDir {
			continue
		}

		if o.ignored(name) {
			logger.Debug().Str("lot", name).Msg("lot ignored by pattern")
			continue
		}

		processed, err := ledger.Contains(ctx, name)
		if err != nil {
			return nil, &ScanError{Root: sourceRoot, Err: errors.Errorf("checking ledger for %s: %w", name, err)}
		}

		if processed {
			logger.Debug().Str("lot", name).Msg("lot already processed")
			continue
		}

		candidates = append(candidates, Candidate{ID: name, Status: Unprocessed})
	}

	logger.Debug().Str("root", sourceRoot).Int("candidates", len(candidates)).Msg("scan complete")
	return candidates, nil
}

// isDirectory follows symlinks so linked lot folders are listed too
func isDirectory(root string, entry os.DirEntry) (bool, error) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (o *options) ignored(name string) bool {
	for _, pattern := range o.ignore {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
