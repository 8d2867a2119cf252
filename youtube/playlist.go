package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ytlive/internal/timefmt"
)

// WeekPlaylist identifies one week's filing playlist.
type WeekPlaylist struct {
	ID    string
	Title string
}

// PlaylistFiler files broadcast videos into Monday-aligned week playlists.
// The most recently used playlist is cached by title; the cache assumes
// this process is the only writer of week playlists and is never
// revalidated within a run.
type PlaylistFiler struct {
	api   API
	title string
	log   *slog.Logger

	cache *WeekPlaylist
}

// NewPlaylistFiler returns a filer. title is the display name used in
// playlist descriptions.
func NewPlaylistFiler(api API, title string, log *slog.Logger) *PlaylistFiler {
	if log == nil {
		log = slog.Default()
	}
	return &PlaylistFiler{api: api, title: title, log: log}
}

// AddToWeekPlaylist appends a video to the playlist of the week containing
// start, creating the playlist if the channel does not have it yet. An
// existing playlist with the exact week title is adopted rather than
// duplicated.
func (f *PlaylistFiler) AddToWeekPlaylist(ctx context.Context, videoID string, start time.Time) (*WeekPlaylist, error) {
	label := timefmt.WeekLabel(start)

	pl := f.cache
	if pl == nil || pl.Title != label {
		found, err := f.findOrCreate(ctx, label, start)
		if err != nil {
			return nil, err
		}
		pl = found
		f.cache = pl
	}

	if err := f.api.InsertPlaylistItem(ctx, pl.ID, videoID); err != nil {
		return nil, err
	}
	f.log.Info("filed video into week playlist", "video_id", videoID, "playlist", pl.Title)
	return pl, nil
}

func (f *PlaylistFiler) findOrCreate(ctx context.Context, label string, start time.Time) (*WeekPlaylist, error) {
	lists, err := f.api.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range lists {
		if p.Title == label {
			return &WeekPlaylist{ID: p.ID, Title: p.Title}, nil
		}
	}

	description := fmt.Sprintf("Videos of %s from %s.", f.title, timefmt.WeekRange(start))
	id, err := f.api.InsertPlaylist(ctx, label, description)
	if err != nil {
		return nil, err
	}
	f.log.Info("created week playlist", "playlist", label)
	return &WeekPlaylist{ID: id, Title: label}, nil
}
