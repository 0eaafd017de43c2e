package opts

import (
	"context"
	"os"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/config"
	"github.com/walteh/lotmig/pkg/ledger"
	"github.com/walteh/lotmig/pkg/log"
	"github.com/walteh/lotmig/pkg/operation"
	"github.com/walteh/lotmig/pkg/session"
	"github.com/walteh/lotmig/pkg/status"
	"github.com/walteh/lotmig/pkg/store"
	"github.com/walteh/lotmig/pkg/ui"
)

// ExitInterrupted is the exit code after a termination signal
const ExitInterrupted = 130

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	Ledger     *ledger.Ledger
	Store      store.Store
	Reporter   *status.Reporter
	Audit      *log.Logger
	AuditFile  *os.File
	Batch      *operation.Batch
	Session    *session.Session
	UserLogger *ui.UserLogger

	// Exit terminates the process after a signal; defaults to os.Exit
	Exit func(code int)

	mu         sync.Mutex
	began      bool
	closed     bool
	stopSignal func()
}

// 💓 Begin announces the worker as running and arranges for a termination
// signal to announce it as stopped before the process exits
func (o *RootOpts) Begin(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.began || o.Reporter == nil {
		return
	}
	o.began = true

	o.Reporter.ReportRunning(ctx)
	o.stopSignal = o.Reporter.StopOnSignal(ctx, func(sig os.Signal) {
		zerolog.Ctx(ctx).Warn().Stringer("signal", sig).Msg("interrupted; lots in progress will be redone on the next run")
		o.Close(ctx)
		exit := o.Exit
		if exit == nil {
			exit = os.Exit
		}
		exit(ExitInterrupted)
	}, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}

// 🧹 Close reports the worker stopped and releases files and connections.
// It is safe to call more than once.
func (o *RootOpts) Close(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true

	logger := zerolog.Ctx(ctx)

	if o.began {
		o.Reporter.ReportStopped(ctx)
	}
	if o.stopSignal != nil {
		o.stopSignal()
	}
	if o.AuditFile != nil {
		if err := o.AuditFile.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing audit log")
		}
	}
	if o.Store != nil {
		if err := o.Store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing store")
		}
	}
}
