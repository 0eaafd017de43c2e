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

package status

import (
	"context"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/store"
)

const defaultReportTimeout = 5 * time.Second

// 📊 State is the lifecycle state announced to the monitor
type State int

const (
	Stopped State = iota
	Running
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// 🖥️ Worker identifies this process to the monitor
type Worker struct {
	Host string
	User string
}

// String renders the identity the way the monitor stores it: HOST_USER
func (w Worker) String() string {
	return w.Host + "_" + w.User
}

// 🔍 CurrentWorker returns the host name and upper-cased login of this process
func CurrentWorker() Worker {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	name := ""
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = os.Getenv("USERNAME")
	}
	// DOMAIN\user on windows
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}

	return Worker{Host: host, User: strings.ToUpper(name)}
}

// 📡 Sink is the external monitoring store
type Sink interface {
	UpdateStatus(ctx context.Context, on bool, worker string, at time.Time) error
	AppendLog(ctx context.Context, entry store.LogEntry) error
}

// 💥 ReportError means a lifecycle report did not reach the monitor
type ReportError struct {
	State State
	Err   error
}

func (e *ReportError) Error() string {
	return "reporting " + e.State.String() + ": " + e.Err.Error()
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// 🔧 ReporterOptions configures a Reporter
type ReporterOptions struct {
	Sink    Sink
	Worker  Worker
	Timeout time.Duration    // per report; defaults to 5s
	Now     func() time.Time // defaults to time.Now
}

// 📣 Reporter announces worker start and stop. Reports are best-effort: a
// failure is logged and forwarded to the audit log, never returned.
type Reporter struct {
	sink    Sink
	worker  Worker
	timeout time.Duration
	now     func() time.Time

	stopOnce sync.Once
}

// 🏭 NewReporter creates a reporter; a nil sink discards reports
func NewReporter(opts ReporterOptions) *Reporter {
	r := &Reporter{
		sink:    opts.Sink,
		worker:  opts.Worker,
		timeout: opts.Timeout,
		now:     opts.Now,
	}
	if r.sink == nil {
		r.sink = store.Nop{}
	}
	if r.timeout <= 0 {
		r.timeout = defaultReportTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Worker returns the identity used in reports.
func (r *Reporter) Worker() Worker {
	return r.worker
}

// ReportRunning announces that the worker is alive.
func (r *Reporter) ReportRunning(ctx context.Context) {
	r.report(ctx, Running)
}

// 🛑 ReportStopped announces that the worker is gone. Only the first call
// sends a report; later calls from other termination paths are no-ops.
func (r *Reporter) ReportStopped(ctx context.Context) {
	r.stopOnce.Do(func() {
		r.report(ctx, Stopped)
	})
}

func (r *Reporter) report(ctx context.Context, state State) {
	logger := zerolog.Ctx(ctx)

	// shutdown paths often carry a cancelled context
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	at := r.now()
	err := r.sink.UpdateStatus(ctx, state == Running, r.worker.String(), at)
	if err == nil {
		logger.Debug().Str("worker", r.worker.String()).Stringer("state", state).Msg("status reported")
		return
	}

	rerr := &ReportError{State: state, Err: err}
	logger.Error().Err(rerr).Str("worker", r.worker.String()).Msg("status report failed")

	if err := r.sink.AppendLog(ctx, store.LogEntry{Time: at, Error: rerr.Error()}); err != nil {
		logger.Warn().Err(err).Msg("audit log unreachable")
	}
}

// 🚦 StopOnSignal reports Stopped when any of signals arrives and then calls
// onSignal. The returned func releases the watcher.
func (r *Reporter) StopOnSignal(ctx context.Context, onSignal func(os.Signal), signals ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	done := make(chan struct{})
	go r.watch(ctx, ch, done, onSignal)

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

func (r *Reporter) watch(ctx context.Context, ch <-chan os.Signal, done <-chan struct{}, onSignal func(os.Signal)) {
	select {
	case sig := <-ch:
		zerolog.Ctx(ctx).Info().Stringer("signal", sig).Msg("termination signal received")
		r.ReportStopped(ctx)
		if onSignal != nil {
			onSignal(sig)
		}
	case <-done:
	case <-ctx.Done():
	}
}
