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

package config

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/lotmig/pkg/store"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Defaults
const (
	DefaultPath        = ".lotmig.yaml"
	DefaultTitle       = "lotmig"
	DefaultLedger      = "processed.log"
	DefaultAuditLog    = "record.log"
	DefaultCopyWorkers = 1
	DefaultSchema      = "vos"
	DefaultSystemName  = "qc_jpeg"
	DefaultSystemType  = "main"
)

// 🗄️ StoreConfig addresses the monitoring database
type StoreConfig struct {
	Driver     string `json:"driver" yaml:"driver"` // postgres or sqlite3
	DSN        string `json:"dsn" yaml:"dsn"`
	Schema     string `json:"schema,omitempty" yaml:"schema,omitempty"`
	SystemName string `json:"system_name,omitempty" yaml:"system_name,omitempty"`
	SystemType string `json:"system_type,omitempty" yaml:"system_type,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	SourceRoot  string       `json:"source_root" yaml:"source_root"`
	DestRoot    string       `json:"dest_root" yaml:"dest_root"`
	Ledger      string       `json:"ledger,omitempty" yaml:"ledger,omitempty"`
	AuditLog    string       `json:"audit_log,omitempty" yaml:"audit_log,omitempty"`
	IgnoreLots  []string     `json:"ignore_lots,omitempty" yaml:"ignore_lots,omitempty"` // doublestar patterns
	CopyWorkers int          `json:"copy_workers,omitempty" yaml:"copy_workers,omitempty"`
	Store       *StoreConfig `json:"store,omitempty" yaml:"store,omitempty"`

	location string
}

// Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks the configuration and fills in defaults. Relative
// ledger and audit log paths are resolved against the config file's directory.
func (cfg *Config) Validate() error {
	// Check required fields
	if cfg.SourceRoot == "" {
		return errors.Errorf("source_root is required")
	}
	if cfg.DestRoot == "" {
		return errors.Errorf("dest_root is required")
	}

	// Clean up paths
	cfg.SourceRoot = filepath.Clean(cfg.SourceRoot)
	cfg.DestRoot = filepath.Clean(cfg.DestRoot)
	if cfg.SourceRoot == cfg.DestRoot {
		return errors.Errorf("source_root and dest_root must differ: %s", cfg.SourceRoot)
	}

	if cfg.CopyWorkers < 0 {
		return errors.Errorf("copy_workers must be at least 1, got %d", cfg.CopyWorkers)
	}
	for _, pattern := range cfg.IgnoreLots {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore_lots pattern %q", pattern)
		}
	}

	// Set defaults
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Ledger == "" {
		cfg.Ledger = DefaultLedger
	}
	if cfg.AuditLog == "" {
		cfg.AuditLog = DefaultAuditLog
	}
	if cfg.CopyWorkers == 0 {
		cfg.CopyWorkers = DefaultCopyWorkers
	}
	cfg.Ledger = cfg.resolve(cfg.Ledger)
	cfg.AuditLog = cfg.resolve(cfg.AuditLog)

	if cfg.Store != nil {
		if err := cfg.Store.validate(); err != nil {
			return errors.Errorf("store: %w", err)
		}
	}

	return nil
}

func (cfg *Config) resolve(path string) string {
	if filepath.IsAbs(path) || cfg.location == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(filepath.Dir(cfg.location), path)
}

func (s *StoreConfig) validate() error {
	switch s.Driver {
	case store.DriverPostgres:
		if s.Schema == "" {
			s.Schema = DefaultSchema
		}
	case store.DriverSQLite:
	case "":
		return errors.Errorf("driver is required")
	default:
		return errors.Errorf("unknown driver %q (want %s or %s)", s.Driver, store.DriverPostgres, store.DriverSQLite)
	}
	if s.DSN == "" {
		return errors.Errorf("dsn is required")
	}
	if s.SystemName == "" {
		s.SystemName = DefaultSystemName
	}
	if s.SystemType == "" {
		s.SystemType = DefaultSystemType
	}
	return nil
}

// StoreOptions converts the store section for store.Open; ok is false when
// no store is configured
func (cfg *Config) StoreOptions() (store.Config, bool) {
	if cfg.Store == nil {
		return store.Config{}, false
	}
	return store.Config{
		Driver:     cfg.Store.Driver,
		DSN:        cfg.Store.DSN,
		Schema:     cfg.Store.Schema,
		SystemName: cfg.Store.SystemName,
		SystemType: cfg.Store.SystemType,
	}, true
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s: %s -> %s (ledger %s)", cfg.Title, cfg.SourceRoot, cfg.DestRoot, cfg.Ledger)
}
