package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// SchedulerConfig fixes the scheduling policy.
type SchedulerConfig struct {
	// Title is the display name used in titles and descriptions.
	Title string
	// Duration is the target window length before end rounding.
	Duration time.Duration
	// GranularityHours is the end-time rounding boundary.
	GranularityHours int
	// PrivacyStatus is applied to inserted broadcasts.
	PrivacyStatus string
	// Zone is the fixed timezone for all scheduling and rendering.
	Zone *time.Location
	// PollInterval and PollTimeout bound every status poll in the package.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// SchedulerMetrics counts lifecycle transitions. A nil sink disables
// counting.
type SchedulerMetrics interface {
	IncBroadcastsScheduled()
	IncBroadcastsStarted()
	IncBroadcastsEnded()
}

// BroadcastFilter selects which states Broadcasts returns.
type BroadcastFilter int

const (
	FilterAll BroadcastFilter = iota
	FilterScheduled
	FilterLive
	FilterFinished
)

// Scheduler owns the rolling window of broadcasts and their
// scheduled→live→finished transitions. The three maps are keyed by start
// instant and stay pairwise disjoint; a broadcast moves between them as
// part of the operation that transitions it. All methods must be called
// from a single goroutine; the state carries no lock.
type Scheduler struct {
	api      API
	endpoint *IngestEndpoint
	filer    *PlaylistFiler
	clock    Clock
	log      *slog.Logger
	metrics  SchedulerMetrics
	cfg      SchedulerConfig

	scheduled map[string]*Broadcast
	live      map[string]*Broadcast
	finished  map[string]*Broadcast
}

// NewScheduler wires a scheduler. filer may be nil to skip playlist filing;
// nil clock and logger fall back to the system clock and slog.Default().
func NewScheduler(api API, endpoint *IngestEndpoint, filer *PlaylistFiler, cfg SchedulerConfig, clock Clock, log *slog.Logger, m SchedulerMetrics) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	if cfg.GranularityHours <= 0 {
		cfg.GranularityHours = 6
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Minute
	}
	return &Scheduler{
		api:       api,
		endpoint:  endpoint,
		filer:     filer,
		clock:     clock,
		log:       log,
		metrics:   m,
		cfg:       cfg,
		scheduled: make(map[string]*Broadcast),
		live:      make(map[string]*Broadcast),
		finished:  make(map[string]*Broadcast),
	}
}

// lookup finds a broadcast by key in any of the three maps.
func (s *Scheduler) lookup(key string) (*Broadcast, bool) {
	if b, ok := s.scheduled[key]; ok {
		return b, true
	}
	if b, ok := s.live[key]; ok {
		return b, true
	}
	if b, ok := s.finished[key]; ok {
		return b, true
	}
	return nil, false
}

func (s *Scheduler) zoneName() string { return s.cfg.Zone.String() }

// Schedule records a broadcast window starting at start and creates its
// remote liveBroadcast. A zero start means now. An instant that is already
// tracked, in any state, returns the existing record with no remote call,
// so repeated scheduling of the same start is harmless. The remote insert
// happens before any local mutation: on failure nothing is recorded.
func (s *Scheduler) Schedule(ctx context.Context, start time.Time) (*Broadcast, error) {
	if start.IsZero() {
		start = s.clock.Now()
	}
	start = start.In(s.cfg.Zone)

	key := startKey(start)
	if b, ok := s.lookup(key); ok {
		return b.clone(), nil
	}

	b := &Broadcast{
		StartTime: start,
		EndTime:   RoundEnd(start, s.cfg.Duration, s.cfg.GranularityHours),
		State:     StateScheduled,
	}
	b.Description = b.renderDescription(s.cfg.Title, s.zoneName())

	id, err := s.api.InsertBroadcast(ctx, BroadcastRequest{
		Title:         broadcastTitle(s.cfg.Title, start),
		Description:   b.Description,
		StartTime:     start,
		EndTime:       b.EndTime,
		PrivacyStatus: s.cfg.PrivacyStatus,
	})
	if err != nil {
		return nil, err
	}
	b.RemoteID = id

	if s.filer != nil {
		if _, err := s.filer.AddToWeekPlaylist(ctx, id, start); err != nil {
			return nil, err
		}
	}

	s.scheduled[key] = b
	s.log.Info("scheduled broadcast",
		"broadcast_id", id,
		"start", start.Format(time.RFC3339),
		"end", b.EndTime.Format(time.RFC3339))
	if s.metrics != nil {
		s.metrics.IncBroadcastsScheduled()
	}
	return b.clone(), nil
}

// Start takes the broadcast scheduled at start live: bind it to the ingest
// stream, wait for the stream to report active, transition, then refresh
// the video metadata. The broadcast moves to Live before metadata is
// pushed; a failed push is logged and does not undo the move, because the
// remote transition has already happened.
func (s *Scheduler) Start(ctx context.Context, start time.Time) (*Broadcast, error) {
	key := startKey(start)
	b, ok := s.scheduled[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotScheduled, key)
	}

	ep, err := s.endpoint.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.api.BindBroadcast(ctx, b.RemoteID, ep.ID); err != nil {
		return nil, err
	}
	if err := s.waitForStreamActive(ctx, ep.ID); err != nil {
		return nil, err
	}

	if err := s.api.TransitionBroadcast(ctx, b.RemoteID, TransitionLive); err != nil {
		if !IsRedundantTransition(err) {
			return nil, err
		}
		s.log.Info("broadcast was already live", "broadcast_id", b.RemoteID)
	}

	delete(s.scheduled, key)
	b.State = StateLive
	b.ActualStart = s.clock.Now().In(s.cfg.Zone)
	s.live[key] = b

	// Link the successor taking over at this window's end, if one is
	// already tracked.
	if next, ok := s.lookup(startKey(b.EndTime)); ok && next.RemoteID != b.RemoteID {
		b.NextID = next.RemoteID
	}
	b.Description = b.renderDescription(s.cfg.Title, s.zoneName())
	if err := s.api.UpdateVideoText(ctx, b.RemoteID, broadcastTitle(s.cfg.Title, b.StartTime), b.Description); err != nil {
		s.log.Warn("failed to push video metadata", "broadcast_id", b.RemoteID, "error", err)
	}

	s.log.Info("broadcast live",
		"broadcast_id", b.RemoteID,
		"start", b.StartTime.Format(time.RFC3339),
		"actual_start", b.ActualStart.Format(time.RFC3339))
	if s.metrics != nil {
		s.metrics.IncBroadcastsStarted()
	}
	return b.clone(), nil
}

// End completes the broadcast that went live at start: transition to
// complete, move to Finished, then refresh the video metadata with the
// actual times. Like Start, a failed metadata push does not undo the move.
func (s *Scheduler) End(ctx context.Context, start time.Time) (*Broadcast, error) {
	key := startKey(start)
	b, ok := s.live[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLive, key)
	}

	if err := s.api.TransitionBroadcast(ctx, b.RemoteID, TransitionComplete); err != nil {
		if !IsRedundantTransition(err) {
			return nil, err
		}
		s.log.Info("broadcast was already complete", "broadcast_id", b.RemoteID)
	}

	delete(s.live, key)
	b.State = StateFinished
	b.ActualEnd = s.clock.Now().In(s.cfg.Zone)
	s.finished[key] = b

	b.Description = b.renderDescription(s.cfg.Title, s.zoneName())
	if err := s.api.UpdateVideoText(ctx, b.RemoteID, broadcastTitle(s.cfg.Title, b.StartTime), b.Description); err != nil {
		s.log.Warn("failed to push video metadata", "broadcast_id", b.RemoteID, "error", err)
	}

	s.log.Info("broadcast finished",
		"broadcast_id", b.RemoteID,
		"start", b.StartTime.Format(time.RFC3339),
		"actual_end", b.ActualEnd.Format(time.RFC3339))
	if s.metrics != nil {
		s.metrics.IncBroadcastsEnded()
	}
	return b.clone(), nil
}

// Broadcasts returns copies of the tracked broadcasts, sorted by start
// time. Mutating the returned records does not touch scheduler state.
func (s *Scheduler) Broadcasts(filter BroadcastFilter) []*Broadcast {
	var out []*Broadcast
	collect := func(m map[string]*Broadcast) {
		for _, b := range m {
			out = append(out, b.clone())
		}
	}
	switch filter {
	case FilterScheduled:
		collect(s.scheduled)
	case FilterLive:
		collect(s.live)
	case FilterFinished:
		collect(s.finished)
	default:
		collect(s.scheduled)
		collect(s.live)
		collect(s.finished)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Counts reports how many broadcasts are tracked in each state.
func (s *Scheduler) Counts() (scheduled, live, finished int) {
	return len(s.scheduled), len(s.live), len(s.finished)
}

// RebuildFromRemote discards local state and rehydrates the three maps from
// the remote listings. The remote is the source of truth after a restart;
// whatever was tracked before is dropped. Entries whose scheduled times do
// not parse are skipped with a warning. When two entries claim the same
// start instant the first one listed wins.
func (s *Scheduler) RebuildFromRemote(ctx context.Context) error {
	scheduled := make(map[string]*Broadcast)
	live := make(map[string]*Broadcast)
	finished := make(map[string]*Broadcast)
	taken := func(key string) bool {
		_, a := scheduled[key]
		_, b := live[key]
		_, c := finished[key]
		return a || b || c
	}

	load := func(status string, state BroadcastState, into map[string]*Broadcast) error {
		remotes, err := s.api.ListBroadcasts(ctx, status)
		if err != nil {
			return err
		}
		for _, r := range remotes {
			b, err := s.broadcastFromRemote(r, state)
			if err != nil {
				s.log.Warn("skipping remote broadcast with unusable times",
					"broadcast_id", r.ID, "error", err)
				continue
			}
			key := b.Key()
			if taken(key) {
				s.log.Warn("duplicate start instant in remote listing, keeping the first",
					"broadcast_id", r.ID, "start", key)
				continue
			}
			into[key] = b
		}
		return nil
	}

	if err := load(BroadcastStatusUpcoming, StateScheduled, scheduled); err != nil {
		return err
	}
	if err := load(BroadcastStatusActive, StateLive, live); err != nil {
		return err
	}
	if err := load(BroadcastStatusCompleted, StateFinished, finished); err != nil {
		return err
	}

	s.scheduled = scheduled
	s.live = live
	s.finished = finished
	s.log.Info("rebuilt local state from remote",
		"scheduled", len(scheduled), "live", len(live), "finished", len(finished))
	return nil
}

// broadcastFromRemote converts a remote record into a local one. An
// unparseable scheduled start is an error; a missing scheduled end falls
// back to the configured window; unusable actual times are left zero.
func (s *Scheduler) broadcastFromRemote(r RemoteBroadcast, state BroadcastState) (*Broadcast, error) {
	start, err := time.Parse(time.RFC3339, r.ScheduledStart)
	if err != nil {
		return nil, fmt.Errorf("scheduled start %q: %w", r.ScheduledStart, err)
	}

	b := &Broadcast{
		StartTime: start.In(s.cfg.Zone),
		RemoteID:  r.ID,
		State:     state,
	}
	if r.ScheduledEnd != "" {
		end, err := time.Parse(time.RFC3339, r.ScheduledEnd)
		if err != nil {
			return nil, fmt.Errorf("scheduled end %q: %w", r.ScheduledEnd, err)
		}
		b.EndTime = end.In(s.cfg.Zone)
	} else {
		b.EndTime = RoundEnd(b.StartTime, s.cfg.Duration, s.cfg.GranularityHours)
	}
	if t, err := time.Parse(time.RFC3339, r.ActualStart); err == nil {
		b.ActualStart = t.In(s.cfg.Zone)
	}
	if t, err := time.Parse(time.RFC3339, r.ActualEnd); err == nil {
		b.ActualEnd = t.In(s.cfg.Zone)
	}
	b.Description = b.renderDescription(s.cfg.Title, s.zoneName())
	return b, nil
}

// StreamHealth reports the ingest stream's current status, creating the
// stream if it does not exist yet.
func (s *Scheduler) StreamHealth(ctx context.Context) (string, error) {
	ep, err := s.endpoint.GetOrCreate(ctx)
	if err != nil {
		return "", err
	}
	return s.api.StreamHealth(ctx, ep.ID)
}

// WaitForStreamActive polls the ingest stream until it reports active,
// checking every PollInterval and giving up with ErrStreamNotActive after
// PollTimeout.
func (s *Scheduler) WaitForStreamActive(ctx context.Context) error {
	ep, err := s.endpoint.GetOrCreate(ctx)
	if err != nil {
		return err
	}
	return s.waitForStreamActive(ctx, ep.ID)
}

func (s *Scheduler) waitForStreamActive(ctx context.Context, streamID string) error {
	deadline := s.clock.Now().Add(s.cfg.PollTimeout)
	for {
		health, err := s.api.StreamHealth(ctx, streamID)
		if err != nil {
			return err
		}
		if health == StreamActive {
			return nil
		}
		if !s.clock.Now().Before(deadline) {
			return fmt.Errorf("%w: stream %s still %q after %s",
				ErrStreamNotActive, streamID, health, s.cfg.PollTimeout)
		}
		s.log.Debug("waiting for ingest stream", "stream_id", streamID, "status", health)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}
	}
}
