package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/session"
)

type cliEnv struct {
	dir    string
	src    string
	dst    string
	config string
}

func newCLIEnv(t *testing.T, extra string) *cliEnv {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	dir := t.TempDir()
	env := &cliEnv{
		dir:    dir,
		src:    filepath.Join(dir, "raw"),
		dst:    filepath.Join(dir, "flat"),
		config: filepath.Join(dir, ".lotmig.yaml"),
	}
	require.NoError(t, os.MkdirAll(env.src, 0755))

	content := "title: QC\nsource_root: " + env.src + "\ndest_root: " + env.dst + "\n" + extra
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0644))
	return env
}

func (e *cliEnv) addLot(t *testing.T, lot string, groups ...string) {
	for _, group := range groups {
		dir := filepath.Join(e.src, lot, group, operation.ImageSubpath)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "A1-B2.jpeg"), []byte(lot+group), 0644))
	}
}

func (e *cliEnv) ledger(t *testing.T) []string {
	b, err := os.ReadFile(filepath.Join(e.dir, "processed.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(b))
}

func (e *cliEnv) execute(t *testing.T, args ...string) error {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	rootOpts := &opts.RootOpts{Exit: func(int) { t.Error("unexpected exit") }}
	cmd := newRootCmd(rootOpts)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))

	err := cmd.ExecuteContext(ctx)
	rootOpts.Close(ctx)
	return err
}

func TestRunAll(t *testing.T) {
	env := newCLIEnv(t, "")
	env.addLot(t, "LOT1", "G1", "G2")
	env.addLot(t, "LOT2", "G1")

	require.NoError(t, env.execute(t, "run", "--all", "--yes"))

	assert.Equal(t, []string{"LOT1", "LOT2"}, env.ledger(t))
	assert.FileExists(t, filepath.Join(env.dst, "LOT1", "G1", "A1-LOT1-G1-B2.jpeg"))
	assert.FileExists(t, filepath.Join(env.dst, "LOT1", "G2", "A1-LOT1-G2-B2.jpeg"))
	assert.FileExists(t, filepath.Join(env.dst, "LOT2", "G1", "A1-LOT2-G1-B2.jpeg"))

	audit, err := os.ReadFile(filepath.Join(env.dir, "record.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(audit), `"outcome":"migrated"`))

	// processed lots are not listed again, so a second run has nothing to do
	require.NoError(t, env.execute(t, "run", "--all", "--yes"))
	assert.Equal(t, []string{"LOT1", "LOT2"}, env.ledger(t))
}

func TestRunNamedLots(t *testing.T) {
	env := newCLIEnv(t, "")
	env.addLot(t, "LOT1", "G1")
	env.addLot(t, "LOT2", "G1")
	env.addLot(t, "LOT3", "G1")

	require.NoError(t, env.execute(t, "run", "LOT3", "LOT1", "LOT3", "--yes"))
	assert.Equal(t, []string{"LOT3", "LOT1"}, env.ledger(t), "lots run in the order named, once each")
	assert.NoDirExists(t, filepath.Join(env.dst, "LOT2"))
}

func TestRunFailingLotIsNotRecorded(t *testing.T) {
	env := newCLIEnv(t, "")
	env.addLot(t, "LOT1", "G1")
	// a die-group without images fails its lot
	require.NoError(t, os.MkdirAll(filepath.Join(env.src, "LOT2", "G1"), 0755))

	require.NoError(t, env.execute(t, "run", "--all", "--yes"), "per-lot failures are reported, not returned")
	assert.Equal(t, []string{"LOT1"}, env.ledger(t))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantIs  error
		wantErr string
	}{
		{name: "no_lots_named", args: []string{"run", "--yes"}, wantErr: "--all"},
		{name: "lots_and_all", args: []string{"run", "LOT1", "--all", "--yes"}, wantErr: "--all"},
		{name: "unknown_lot", args: []string{"run", "LOT9", "--yes"}, wantIs: session.ErrUnknownCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t, "")
			env.addLot(t, "LOT1", "G1")

			err := env.execute(t, tt.args...)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			assert.Empty(t, env.ledger(t))
		})
	}
}

func TestMissingConfig(t *testing.T) {
	env := newCLIEnv(t, "")
	env.config = filepath.Join(env.dir, "missing.yaml")

	err := env.execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestListAndLedger(t *testing.T) {
	env := newCLIEnv(t, "ignore_lots: [\"_tmp*\"]\n")
	env.addLot(t, "LOT1", "G1")
	env.addLot(t, "_tmp_upload", "G1")

	require.NoError(t, env.execute(t, "list"))
	require.NoError(t, env.execute(t, "ledger"))

	require.NoError(t, env.execute(t, "run", "--all", "--yes"))
	assert.Equal(t, []string{"LOT1"}, env.ledger(t), "ignored lots are never selected")
	require.NoError(t, env.execute(t, "ledger"))
}

func TestRunReportsToStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "status.db")
	env := newCLIEnv(t, "store:\n  driver: sqlite3\n  dsn: "+dbPath+"\n")
	env.addLot(t, "LOT1", "G1")

	require.NoError(t, env.execute(t, "run", "--all", "--yes"))

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var on int
	require.NoError(t, db.QueryRow(`SELECT status FROM website_system WHERE system_name = 'qc_jpeg'`).Scan(&on))
	assert.Equal(t, 0, on, "the worker is reported stopped on exit")

	var logs int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM website_log WHERE log LIKE '%Renamed JPEG for LOT1'`).Scan(&logs))
	assert.Equal(t, 1, logs)
}

func TestUnreachableStoreDoesNotStopRun(t *testing.T) {
	env := newCLIEnv(t, "store:\n  driver: sqlite3\n  dsn: "+filepath.Join(t.TempDir(), "no", "such", "dir", "status.db")+"\n")
	env.addLot(t, "LOT1", "G1")

	require.NoError(t, env.execute(t, "run", "--all", "--yes"))
	assert.Equal(t, []string{"LOT1"}, env.ledger(t))
}
