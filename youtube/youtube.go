// Package youtube automates an indefinite livestream on a YouTube channel:
// one reusable RTMP ingest endpoint, a rolling window of fixed-length
// broadcasts bound to it, weekly playlist filing of finished videos, and
// startup cleanup of broadcasts a crashed run left behind.
//
// The remote surface is the API interface; Client implements it over the
// YouTube Data API v3. Scheduler owns the local broadcast state and the
// scheduled→live→finished transitions. Runner drives the whole loop.
package youtube

import (
	"context"
	"time"
)

// Broadcast status filters accepted by ListBroadcasts.
const (
	BroadcastStatusUpcoming  = "upcoming"
	BroadcastStatusActive    = "active"
	BroadcastStatusCompleted = "completed"
)

// Transition targets accepted by TransitionBroadcast.
const (
	TransitionTesting  = "testing"
	TransitionLive     = "live"
	TransitionComplete = "complete"
)

// Stream states reported by StreamHealth.
const (
	StreamActive   = "active"
	StreamReady    = "ready"
	StreamInactive = "inactive"
	StreamError    = "error"
)

// StreamEndpoint identifies the reusable ingest stream an encoder pushes to.
type StreamEndpoint struct {
	// ID is the liveStream resource ID.
	ID string
	// IngestURL is the full RTMP address including the stream name.
	IngestURL string
}

// BroadcastRequest carries everything needed to insert a liveBroadcast.
type BroadcastRequest struct {
	Title         string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	PrivacyStatus string
}

// RemoteBroadcast is the remote view of a liveBroadcast resource. Times are
// kept as the RFC3339 strings the API returned; callers decide how to treat
// values that do not parse.
type RemoteBroadcast struct {
	ID              string
	Title           string
	LifeCycleStatus string
	ScheduledStart  string
	ScheduledEnd    string
	ActualStart     string
	ActualEnd       string
	BoundStreamID   string
}

// PlaylistInfo is the remote view of a playlist.
type PlaylistInfo struct {
	ID    string
	Title string
}

// PlaylistItemInfo is the remote view of one playlist entry.
type PlaylistItemInfo struct {
	// ID is the playlist item resource ID (what playlistItems.delete wants).
	ID string
	// VideoID is the video the entry points at.
	VideoID string
}

// API is the remote surface every scheduling component depends on. The
// production implementation is Client; tests substitute in-memory fakes.
type API interface {
	// InsertStream creates a reusable RTMP ingest stream.
	InsertStream(ctx context.Context, title string) (*StreamEndpoint, error)
	// StreamHealth returns the stream's current streamStatus.
	StreamHealth(ctx context.Context, streamID string) (string, error)

	// InsertBroadcast creates a liveBroadcast and returns its ID, which
	// doubles as the video ID of the eventual archive.
	InsertBroadcast(ctx context.Context, req BroadcastRequest) (string, error)
	// BindBroadcast attaches a broadcast to an ingest stream.
	BindBroadcast(ctx context.Context, broadcastID, streamID string) error
	// TransitionBroadcast moves a broadcast to testing, live or complete.
	TransitionBroadcast(ctx context.Context, broadcastID, status string) error
	// BroadcastLifecycle returns a broadcast's current lifeCycleStatus.
	BroadcastLifecycle(ctx context.Context, broadcastID string) (string, error)
	// ListBroadcasts returns all broadcasts with the given status
	// (upcoming, active or completed), following pagination.
	ListBroadcasts(ctx context.Context, status string) ([]RemoteBroadcast, error)
	// DeleteBroadcast removes a broadcast outright.
	DeleteBroadcast(ctx context.Context, broadcastID string) error

	// UpdateVideoText replaces a video's title and description, re-applying
	// the configured category, tags and language.
	UpdateVideoText(ctx context.Context, videoID, title, description string) error

	// InsertPlaylist creates a playlist and returns its ID.
	InsertPlaylist(ctx context.Context, title, description string) (string, error)
	// ListPlaylists returns all of the channel's playlists.
	ListPlaylists(ctx context.Context) ([]PlaylistInfo, error)
	// UpdatePlaylistPrivacy changes a playlist's privacy status. The
	// existing title must be passed through because playlists.update
	// rejects a snippet without one.
	UpdatePlaylistPrivacy(ctx context.Context, playlistID, title, privacy string) error
	// DeletePlaylist removes a playlist.
	DeletePlaylist(ctx context.Context, playlistID string) error
	// InsertPlaylistItem appends a video to a playlist.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error
	// ListPlaylistItems returns all entries of a playlist.
	ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItemInfo, error)
	// DeletePlaylistItem removes one playlist entry by item ID.
	DeletePlaylistItem(ctx context.Context, itemID string) error
}
