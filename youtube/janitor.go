package youtube

import (
	"context"
	"log/slog"
	"time"

	"ytlive/internal/timefmt"
)

// PlaylistJanitor retires old week playlists. Only playlists whose title
// carries the week label marker are considered; everything else on the
// channel is left alone. Week titles that do not parse are skipped with a
// warning, never modified.
type PlaylistJanitor struct {
	api  API
	zone *time.Location
	log  *slog.Logger
}

// NewPlaylistJanitor returns a janitor over the channel's week playlists.
func NewPlaylistJanitor(api API, zone *time.Location, log *slog.Logger) *PlaylistJanitor {
	if zone == nil {
		zone = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &PlaylistJanitor{api: api, zone: zone, log: log}
}

// Before lists the week playlists from weeks strictly before cutoff's week,
// without touching them.
func (j *PlaylistJanitor) Before(ctx context.Context, cutoff time.Time) ([]PlaylistInfo, error) {
	lists, err := j.api.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	cutoffWeek := timefmt.WeekStart(cutoff.In(j.zone))

	var out []PlaylistInfo
	for _, p := range lists {
		if !timefmt.IsWeekLabel(p.Title) {
			continue
		}
		monday, err := timefmt.ParseWeekLabelDate(p.Title, j.zone)
		if err != nil {
			j.log.Warn("week playlist title does not parse, leaving it alone",
				"title", p.Title, "error", err)
			continue
		}
		if monday.Before(cutoffWeek) {
			out = append(out, p)
		}
	}
	return out, nil
}

// MakePrivateBefore flips week playlists from weeks strictly before
// cutoff's week to private and returns how many were updated.
func (j *PlaylistJanitor) MakePrivateBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return j.sweep(ctx, cutoff, "made week playlist private", func(ctx context.Context, p PlaylistInfo) error {
		return j.api.UpdatePlaylistPrivacy(ctx, p.ID, p.Title, "private")
	})
}

// DeleteBefore deletes week playlists from weeks strictly before cutoff's
// week and returns how many were deleted. The videos themselves are not
// touched.
func (j *PlaylistJanitor) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return j.sweep(ctx, cutoff, "deleted week playlist", func(ctx context.Context, p PlaylistInfo) error {
		return j.api.DeletePlaylist(ctx, p.ID)
	})
}

func (j *PlaylistJanitor) sweep(ctx context.Context, cutoff time.Time, msg string, apply func(context.Context, PlaylistInfo) error) (int, error) {
	targets, err := j.Before(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, p := range targets {
		if err := apply(ctx, p); err != nil {
			return n, err
		}
		j.log.Info(msg, "title", p.Title)
		n++
	}
	return n, nil
}
