package youtube

import (
	"fmt"
	"math"
	"time"

	"ytlive/internal/timefmt"
)

// BroadcastState is the local lifecycle state of a broadcast.
type BroadcastState int

const (
	// StateScheduled means the remote broadcast exists and is waiting for
	// its start time.
	StateScheduled BroadcastState = iota
	// StateLive means the broadcast has been transitioned to live.
	StateLive
	// StateFinished means the broadcast has been transitioned to complete.
	StateFinished
)

// String returns the lowercase state name.
func (s BroadcastState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateLive:
		return "live"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Broadcast is the local record of one broadcast window.
type Broadcast struct {
	// StartTime is the scheduled start. Its instant keys the broadcast.
	StartTime time.Time
	// EndTime is the scheduled end, aligned per RoundEnd.
	EndTime time.Time
	// RemoteID is the liveBroadcast resource ID, which doubles as the
	// video ID of the eventual archive.
	RemoteID string
	// State is the local lifecycle state.
	State BroadcastState
	// ActualStart and ActualEnd record when the live/complete transitions
	// really happened; zero until then.
	ActualStart time.Time
	ActualEnd   time.Time
	// NextID is the RemoteID of the broadcast taking over at EndTime, once
	// known.
	NextID string
	// Description is the last rendered description text.
	Description string
}

// startKey keys a broadcast by the instant of its start. Formatting in UTC
// makes two representations of the same instant collide, which is the
// point: wall-clock strings in the scheduling zone would not survive a
// round trip through the remote API.
func startKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Key returns the broadcast's map key.
func (b *Broadcast) Key() string { return startKey(b.StartTime) }

// clone returns a copy for handing out as a snapshot.
func (b *Broadcast) clone() *Broadcast {
	c := *b
	return &c
}

// RoundEnd aligns the naive end start+duration to the rounding granularity.
// The end's hour of day, minutes included, is rounded to the nearest
// multiple of granularityHours; minutes and seconds are discarded. A
// rounded hour of 24 lands on midnight of the next day. If rounding leaves
// the end at or before the start, the end advances one granularity step, so
// the result always comes after the start.
func RoundEnd(start time.Time, duration time.Duration, granularityHours int) time.Time {
	if granularityHours <= 0 {
		granularityHours = 1
	}
	naive := start.Add(duration)

	frac := float64(naive.Hour()) + float64(naive.Minute())/60
	steps := int(math.Round(frac / float64(granularityHours)))

	// time.Date normalizes an out-of-range hour, so 24 becomes midnight of
	// the following day.
	end := time.Date(naive.Year(), naive.Month(), naive.Day(),
		steps*granularityHours, 0, 0, 0, naive.Location())
	if !end.After(start) {
		end = time.Date(naive.Year(), naive.Month(), naive.Day(),
			(steps+1)*granularityHours, 0, 0, 0, naive.Location())
	}
	return end
}

// broadcastTitle renders the remote title for a broadcast starting at start.
func broadcastTitle(title string, start time.Time) string {
	return title + " on " + start.Format(timefmt.TitleTime)
}

// renderDescription builds the complete description from the broadcast's
// fields. The text is always rendered whole; nothing edits a description in
// place. Actual times take over from scheduled ones as soon as they are
// known.
func (b *Broadcast) renderDescription(title, zone string) string {
	start := b.StartTime
	if !b.ActualStart.IsZero() {
		start = b.ActualStart
	}
	end := b.EndTime
	if !b.ActualEnd.IsZero() {
		end = b.ActualEnd
	}

	s := fmt.Sprintf("%s starting on %s and ending at %s (%s timezone).",
		title, start.Format(timefmt.ProseTime), end.Format(timefmt.ProseTime), zone)
	if b.NextID != "" {
		s += fmt.Sprintf(" Watch the next part here: https://youtu.be/%s.", b.NextID)
	}
	return s
}
