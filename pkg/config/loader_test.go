package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// 🧪 TestLoad tests loading every supported format
func TestLoad(t *testing.T) {
	t.Setenv("LOTMIG_TEST_DSN", "postgres://from-env")

	tests := []struct {
		name     string
		filename string
		content  string
		want     func(dir string) *Config
	}{
		{
			name:     "yaml",
			filename: ".lotmig.yaml",
			content: `
title: QC
source_root: /mnt/src
dest_root: /mnt/dst
ignore_lots: ["_tmp*"]
copy_workers: 2
store:
  driver: postgres
  dsn: postgres://x
`,
			want: func(dir string) *Config {
				return &Config{
					Title:       "QC",
					SourceRoot:  "/mnt/src",
					DestRoot:    "/mnt/dst",
					Ledger:      filepath.Join(dir, "processed.log"),
					AuditLog:    filepath.Join(dir, "record.log"),
					IgnoreLots:  []string{"_tmp*"},
					CopyWorkers: 2,
					Store:       &StoreConfig{Driver: "postgres", DSN: "postgres://x", Schema: "vos", SystemName: "qc_jpeg", SystemType: "main"},
				}
			},
		},
		{
			name:     "yml",
			filename: "lotmig.yml",
			content:  "source_root: /mnt/src\ndest_root: /mnt/dst\nledger: /var/processed.log\n",
			want: func(dir string) *Config {
				return &Config{
					Title:       "lotmig",
					SourceRoot:  "/mnt/src",
					DestRoot:    "/mnt/dst",
					Ledger:      "/var/processed.log",
					AuditLog:    filepath.Join(dir, "record.log"),
					CopyWorkers: 1,
				}
			},
		},
		{
			name:     "json",
			filename: "lotmig.json",
			content:  `{"source_root": "/mnt/src", "dest_root": "/mnt/dst", "store": {"driver": "sqlite3", "dsn": "status.db"}}`,
			want: func(dir string) *Config {
				return &Config{
					Title:       "lotmig",
					SourceRoot:  "/mnt/src",
					DestRoot:    "/mnt/dst",
					Ledger:      filepath.Join(dir, "processed.log"),
					AuditLog:    filepath.Join(dir, "record.log"),
					CopyWorkers: 1,
					Store:       &StoreConfig{Driver: "sqlite3", DSN: "status.db", SystemName: "qc_jpeg", SystemType: "main"},
				}
			},
		},
		{
			name:     "hcl",
			filename: "lotmig.hcl",
			content: `
source_root = "/mnt/src"
dest_root   = "/mnt/dst"
ignore_lots = ["_tmp*", ".*"]

store {
  driver      = "postgres"
  dsn         = env("LOTMIG_TEST_DSN")
  system_type = "backup"
}
`,
			want: func(dir string) *Config {
				return &Config{
					Title:       "lotmig",
					SourceRoot:  "/mnt/src",
					DestRoot:    "/mnt/dst",
					Ledger:      filepath.Join(dir, "processed.log"),
					AuditLog:    filepath.Join(dir, "record.log"),
					IgnoreLots:  []string{"_tmp*", ".*"},
					CopyWorkers: 1,
					Store:       &StoreConfig{Driver: "postgres", DSN: "postgres://from-env", Schema: "vos", SystemName: "qc_jpeg", SystemType: "backup"},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			path := writeConfig(t, tt.filename, tt.content)

			cfg, err := Load(ctx, path)
			require.NoError(t, err)

			want := tt.want(filepath.Dir(path))
			want.location = path
			assert.Equal(t, want, cfg)
			assert.Equal(t, path, cfg.Location())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  string
	}{
		{name: "yaml_unknown_field", filename: "c.yaml", content: "source_root: /a\ndest_root: /b\ndestination: /c\n", wantErr: "parsing YAML"},
		{name: "json_unknown_field", filename: "c.json", content: `{"source_root": "/a", "dest_root": "/b", "async": true}`, wantErr: "parsing JSON"},
		{name: "hcl_syntax", filename: "c.hcl", content: `source_root = `, wantErr: "parsing HCL"},
		{name: "hcl_missing_required", filename: "c.hcl", content: `source_root = "/a"`, wantErr: "decoding HCL"},
		{name: "invalid_values", filename: "c.yaml", content: "source_root: /a\ndest_root: /a\n", wantErr: "validating config"},
		{name: "unsupported_extension", filename: "c.toml", content: "x = 1", wantErr: "no parser found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.filename, tt.content)
			_, err := Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "config.YML", want: &YAMLParser{}},
		{name: "json_file", filename: "config.json", want: &JSONParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "unknown_file", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	parsers = nil
	p := &JSONParser{}
	Register(p)
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Same(t, p, GetParser("x.json"))
	assert.Nil(t, GetParser("x.yaml"))
}
