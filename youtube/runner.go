package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers failure notices to an operator. Implementations must
// not block indefinitely; delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

// LogNotifier reports failures through the logger. It is the in-process
// fallback when no external notification channel is wired.
type LogNotifier struct {
	Log *slog.Logger
}

// Notify logs the notice at error level.
func (n *LogNotifier) Notify(ctx context.Context, subject, body string) {
	n.Log.Error("operator notice", "subject", subject, "body", body)
}

// RunnerMetrics receives loop-level counts. A nil sink disables them.
type RunnerMetrics interface {
	AddCleanupDeleted(int)
	SetBroadcastsScheduled(int)
	SetBroadcastsLive(int)
}

// RunnerConfig tunes the driving loop.
type RunnerConfig struct {
	// MaxScheduled is the scheduling-window depth kept topped up.
	MaxScheduled int
	// LoopInterval is the pass cadence.
	LoopInterval time.Duration
	// HealthLogInterval is the cadence of stream-health log lines.
	HealthLogInterval time.Duration
	// MetricsAddr serves MetricsHandler over HTTP when both are set.
	MetricsAddr    string
	MetricsHandler http.Handler
}

// Runner drives the scheduler indefinitely: keep the window of scheduled
// broadcasts full, start the ones that are due, end the ones that have
// expired. Any unexpected error notifies the operator and stops the run;
// the supervisor is expected to restart the process, whose startup path
// reconciles against the remote.
type Runner struct {
	scheduler *Scheduler
	cleanup   *CleanupSweep
	notifier  Notifier
	clock     Clock
	log       *slog.Logger
	metrics   RunnerMetrics
	cfg       RunnerConfig
}

// NewRunner wires the loop. A nil notifier falls back to LogNotifier; nil
// clock and logger fall back to the system clock and slog.Default().
func NewRunner(scheduler *Scheduler, cleanup *CleanupSweep, cfg RunnerConfig, notifier Notifier, clock Clock, log *slog.Logger, m RunnerMetrics) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = &LogNotifier{Log: log}
	}
	if cfg.MaxScheduled < 1 {
		cfg.MaxScheduled = 1
	}
	if cfg.LoopInterval <= 0 {
		cfg.LoopInterval = time.Minute
	}
	if cfg.HealthLogInterval <= 0 {
		cfg.HealthLogInterval = 5 * time.Minute
	}
	return &Runner{
		scheduler: scheduler,
		cleanup:   cleanup,
		notifier:  notifier,
		clock:     clock,
		log:       log,
		metrics:   m,
		cfg:       cfg,
	}
}

// Run executes the loop until ctx is canceled or an error terminates it.
// Context cancellation is a graceful stop and returns nil.
func (r *Runner) Run(ctx context.Context) error {
	log := r.log.With("run_id", uuid.NewString())
	log.Info("starting broadcast runner")

	if srv := r.serveMetrics(log); srv != nil {
		defer r.shutdownMetrics(srv, log)
	}

	if err := r.startup(ctx, log); err != nil {
		return r.fail(ctx, log, err)
	}

	ticker := time.NewTicker(r.cfg.LoopInterval)
	defer ticker.Stop()
	lastHealthLog := r.clock.Now()

	for {
		if err := r.pass(ctx, log, &lastHealthLog); err != nil {
			return r.fail(ctx, log, err)
		}
		select {
		case <-ctx.Done():
			log.Info("broadcast runner stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// startup reconciles against the remote before the first pass: sweep
// leftovers, rebuild local state, make sure the ingest stream exists and
// receives data, and seed the window if it is empty.
func (r *Runner) startup(ctx context.Context, log *slog.Logger) error {
	deleted, err := r.cleanup.Run(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Info("startup cleanup finished", "deleted", deleted)
	}
	if r.metrics != nil {
		r.metrics.AddCleanupDeleted(deleted)
	}

	if err := r.scheduler.RebuildFromRemote(ctx); err != nil {
		return err
	}

	// Block until the encoder reaches the ingest endpoint. Each wait is
	// bounded by the poll budget; on timeout we log and re-arm, so startup
	// waits indefinitely while every single poll stays bounded.
	for {
		err := r.scheduler.WaitForStreamActive(ctx)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrStreamNotActive) {
			return err
		}
		log.Warn("ingest stream not active yet, still waiting", "error", err)
	}

	if scheduled, live, _ := r.scheduler.Counts(); scheduled+live == 0 {
		if _, err := r.scheduler.Schedule(ctx, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

// pass runs one loop iteration: top up the window, start what is due, end
// what has expired, and periodically log stream health.
func (r *Runner) pass(ctx context.Context, log *slog.Logger, lastHealthLog *time.Time) error {
	now := r.clock.Now()

	if err := r.topUp(ctx, log, now); err != nil {
		return err
	}

	for _, b := range r.scheduler.Broadcasts(FilterScheduled) {
		if b.StartTime.After(now) {
			continue
		}
		if _, err := r.scheduler.Start(ctx, b.StartTime); err != nil {
			return err
		}
	}

	for _, b := range r.scheduler.Broadcasts(FilterLive) {
		if b.EndTime.After(now) {
			continue
		}
		if _, err := r.scheduler.End(ctx, b.StartTime); err != nil {
			return err
		}
	}

	if now.Sub(*lastHealthLog) >= r.cfg.HealthLogInterval {
		*lastHealthLog = now
		// Health is informational; a failed check never stops the loop.
		if health, err := r.scheduler.StreamHealth(ctx); err != nil {
			log.Warn("stream health check failed", "error", err)
		} else {
			log.Info("stream health", "status", health)
		}
	}

	if r.metrics != nil {
		scheduled, live, _ := r.scheduler.Counts()
		r.metrics.SetBroadcastsScheduled(scheduled)
		r.metrics.SetBroadcastsLive(live)
	}
	return nil
}

// topUp schedules broadcasts until the window holds MaxScheduled of them.
// Each new window starts where the last one ends: at the latest end time
// across scheduled and live broadcasts, or now for an empty window.
func (r *Runner) topUp(ctx context.Context, log *slog.Logger, now time.Time) error {
	for {
		before, _, _ := r.scheduler.Counts()
		if before >= r.cfg.MaxScheduled {
			return nil
		}

		next := now
		for _, b := range r.scheduler.Broadcasts(FilterScheduled) {
			if b.EndTime.After(next) {
				next = b.EndTime
			}
		}
		for _, b := range r.scheduler.Broadcasts(FilterLive) {
			if b.EndTime.After(next) {
				next = b.EndTime
			}
		}

		b, err := r.scheduler.Schedule(ctx, next)
		if err != nil {
			return err
		}
		if after, _, _ := r.scheduler.Counts(); after == before {
			// The slot was already taken by a tracked broadcast; there is
			// nothing further to extend.
			log.Warn("top-up hit an existing broadcast, stopping",
				"start", b.StartTime.Format(time.RFC3339), "state", b.State.String())
			return nil
		}
	}
}

// fail routes an error ending the run. Cancellation is a graceful stop;
// everything else notifies the operator and propagates.
func (r *Runner) fail(ctx context.Context, log *slog.Logger, err error) error {
	if errors.Is(err, context.Canceled) {
		log.Info("broadcast runner stopping", "reason", err)
		return nil
	}
	log.Error("broadcast runner failed", "error", err)
	r.notifier.Notify(context.WithoutCancel(ctx), "livestream runner failed", err.Error())
	return err
}

func (r *Runner) serveMetrics(log *slog.Logger) *http.Server {
	if r.cfg.MetricsAddr == "" || r.cfg.MetricsHandler == nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.cfg.MetricsHandler)
	srv := &http.Server{Addr: r.cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", r.cfg.MetricsAddr)
	return srv
}

func (r *Runner) shutdownMetrics(srv *http.Server, log *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics listener shutdown failed", "error", err)
	}
}
