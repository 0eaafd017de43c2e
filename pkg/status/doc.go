/*
Package status tells the monitoring store whether this worker is alive and
formats batch progress for humans.

	            +-------------+
	            |  Reporter   |
	            | (lifecycle) |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+------+           +------+-----+
	|   Sink     |           |  Formatter |
	| (monitor)  |           |  (console) |
	+------------+           +------------+

🎯 Purpose:
- Announce Running at startup and Stopped at shutdown
- Keep reporting failures out of the caller's control flow
- Phrase per-lot outcomes and progress consistently

🔄 Termination paths:
Stopped has to be announced on a normal exit, on an interrupt, and when the
host closes the console. All three paths call ReportStopped; a sync.Once makes
sure only the first one reaches the store.

	r := status.NewReporter(status.ReporterOptions{Sink: st, Worker: status.CurrentWorker()})
	r.ReportRunning(ctx)
	defer r.ReportStopped(ctx)

	stop := r.StopOnSignal(ctx, func(os.Signal) { os.Exit(130) }, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

⚠️ Reports are best-effort. A store outage is logged locally (and forwarded to
the audit log when that part of the store still works) and then ignored.
*/
package status
