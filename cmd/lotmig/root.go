package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"github.com/walteh/lotmig/pkg/config"
	"github.com/walteh/lotmig/pkg/ledger"
	"github.com/walteh/lotmig/pkg/log"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/session"
	"github.com/walteh/lotmig/pkg/status"
	"github.com/walteh/lotmig/pkg/store"
	"github.com/walteh/lotmig/pkg/ui"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootOpts fills o with the dependencies described by the config file
func newRootOpts(ctx context.Context, o *opts.RootOpts) error {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg

	o.UserLogger = ui.NewUserLogger(ctx, cfg.Title, os.Stdout)

	o.Ledger, err = ledger.Open(cfg.Ledger)
	if err != nil {
		return errors.Errorf("opening ledger: %w", err)
	}

	o.Store = openStore(ctx, cfg, o.UserLogger)

	worker := status.CurrentWorker()
	o.Reporter = status.NewReporter(status.ReporterOptions{
		Sink:   o.Store,
		Worker: worker,
	})

	o.AuditFile, err = log.OpenAuditFile(cfg.AuditLog)
	if err != nil {
		return errors.Errorf("opening audit log: %w", err)
	}

	formatter := status.NewDefaultFormatter()
	o.Audit = log.New(log.Options{
		Console:   os.Stdout,
		Audit:     o.AuditFile,
		Sink:      o.Store,
		Worker:    worker,
		Formatter: formatter,
	})

	o.Batch, err = operation.NewBatch(operation.BatchOptions{
		Ledger:     o.Ledger,
		Migrator:   operation.NewTransformer(operation.TransformerOptions{CopyWorkers: cfg.CopyWorkers}),
		Recorder:   o.Audit,
		Formatter:  formatter,
		SourceRoot: cfg.SourceRoot,
		DestRoot:   cfg.DestRoot,
	})
	if err != nil {
		return errors.Errorf("creating batch: %w", err)
	}

	o.Session, err = session.New(session.Options{
		SourceRoot: cfg.SourceRoot,
		Ledger:     o.Ledger,
		Batch:      o.Batch,
		Renderer:   o.UserLogger,
		Ignore:     cfg.IgnoreLots,
	})
	if err != nil {
		return errors.Errorf("creating session: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Stringer("config", cfg).Str("worker", worker.String()).Msg("initialized")
	return nil
}

// openStore connects to the monitoring database. An unreachable store
// degrades to store.Nop so migrations keep running.
func openStore(ctx context.Context, cfg *config.Config, u *ui.UserLogger) store.Store {
	storeCfg, ok := cfg.StoreOptions()
	if !ok {
		return store.Nop{}
	}
	s, err := store.Open(ctx, storeCfg)
	if err != nil {
		u.LogValidation(false, "Monitoring store unreachable; continuing without it", nil)
		zerolog.Ctx(ctx).Warn().Err(err).Str("driver", storeCfg.Driver).Msg("store unavailable")
		return store.Nop{}
	}
	return s
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
