package youtube

import (
	"context"
	"log/slog"
	"time"

	"ytlive/internal/timefmt"
)

// CleanupSweep deletes upcoming broadcasts a previous run left behind,
// removing each one's video from the week playlist it was filed into
// first. Upcoming broadcasts are recreated by the scheduler anyway, so a
// crashed run's leftovers are safe to discard wholesale.
type CleanupSweep struct {
	api  API
	zone *time.Location
	log  *slog.Logger
}

// NewCleanupSweep returns a sweep over the channel's upcoming broadcasts.
func NewCleanupSweep(api API, zone *time.Location, log *slog.Logger) *CleanupSweep {
	if zone == nil {
		zone = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &CleanupSweep{api: api, zone: zone, log: log}
}

// Run deletes every remote upcoming broadcast and returns how many were
// deleted. Playlist removal failures are logged and skipped; a broadcast
// deletion failure aborts the sweep with the count so far.
func (c *CleanupSweep) Run(ctx context.Context) (int, error) {
	remotes, err := c.api.ListBroadcasts(ctx, BroadcastStatusUpcoming)
	if err != nil {
		return 0, err
	}

	index := &playlistIndex{api: c.api, log: c.log}
	deleted := 0
	for _, r := range remotes {
		c.removeFromWeekPlaylist(ctx, r, index)
		if err := c.api.DeleteBroadcast(ctx, r.ID); err != nil {
			return deleted, err
		}
		deleted++
		c.log.Info("deleted orphaned broadcast", "broadcast_id", r.ID, "title", r.Title)
	}
	return deleted, nil
}

// removeFromWeekPlaylist deletes the playlist entries pointing at the
// broadcast's video from its week playlist. Every failure here is logged
// and swallowed: a stale playlist entry is cosmetic, the broadcast deletion
// is what matters.
func (c *CleanupSweep) removeFromWeekPlaylist(ctx context.Context, r RemoteBroadcast, index *playlistIndex) {
	start, err := time.Parse(time.RFC3339, r.ScheduledStart)
	if err != nil {
		c.log.Warn("broadcast has no usable start, skipping playlist removal",
			"broadcast_id", r.ID, "error", err)
		return
	}

	label := timefmt.WeekLabel(start.In(c.zone))
	playlistID, ok := index.find(ctx, label)
	if !ok {
		return
	}

	items, err := c.api.ListPlaylistItems(ctx, playlistID)
	if err != nil {
		c.log.Warn("failed to list week playlist items",
			"playlist", label, "error", err)
		return
	}
	for _, item := range items {
		if item.VideoID != r.ID {
			continue
		}
		if err := c.api.DeletePlaylistItem(ctx, item.ID); err != nil {
			c.log.Warn("failed to remove playlist item",
				"playlist", label, "video_id", r.ID, "error", err)
			continue
		}
		c.log.Info("removed video from week playlist", "playlist", label, "video_id", r.ID)
	}
}

// playlistIndex resolves playlist titles to IDs, listing the channel's
// playlists at most once per sweep.
type playlistIndex struct {
	api API
	log *slog.Logger

	loaded  bool
	byTitle map[string]string
}

func (x *playlistIndex) find(ctx context.Context, title string) (string, bool) {
	if !x.loaded {
		lists, err := x.api.ListPlaylists(ctx)
		if err != nil {
			x.log.Warn("failed to list playlists", "error", err)
			return "", false
		}
		x.byTitle = make(map[string]string, len(lists))
		for _, p := range lists {
			x.byTitle[p.Title] = p.ID
		}
		x.loaded = true
	}
	id, ok := x.byTitle[title]
	return id, ok
}
