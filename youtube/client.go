package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"ytlive/internal/retry"
)

// ClientConfig tunes the remote client.
type ClientConfig struct {
	// Rate is the Data API request budget in requests per second.
	Rate float64
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries int
	// RetryBackoff is the fixed sleep between attempts.
	RetryBackoff time.Duration
	// PrivacyStatus is applied to inserted playlists.
	PrivacyStatus string
	// CategoryID, Tags and DefaultLanguage are re-applied on every video
	// metadata update.
	CategoryID      string
	Tags            []string
	DefaultLanguage string
}

// ClientMetrics counts API activity. A nil sink disables counting.
type ClientMetrics interface {
	IncAPICalls()
	IncAPIRetries()
}

// Client implements API over the YouTube Data API v3. Every call is paced
// by a token bucket and retried on transient failures with a fixed backoff;
// failures come back as *APIError.
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
	retry   retry.Config
	cfg     ClientConfig
	log     *slog.Logger
	metrics ClientMetrics
}

// NewClient wraps an authorized service. A nil logger falls back to
// slog.Default().
func NewClient(service *youtube.Service, cfg ClientConfig, log *slog.Logger, m ClientMetrics) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Minute
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-GB"
	}
	return &Client{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		retry:   retry.Fixed(cfg.MaxRetries, cfg.RetryBackoff),
		cfg:     cfg,
		log:     log,
		metrics: m,
	}
}

// execute runs one remote operation: wait for the rate limiter, call, and
// retry transient failures. Attempt errors are logged at debug.
func (c *Client) execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.metrics != nil {
		c.metrics.IncAPICalls()
	}

	attempt := 0
	return retry.Do(ctx, c.retry, isTransient, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		if attempt++; attempt > 1 {
			if c.metrics != nil {
				c.metrics.IncAPIRetries()
			}
			c.log.Debug("retrying api call", "op", op, "attempt", attempt)
		}
		if err := fn(ctx); err != nil {
			c.log.Debug("api call failed", "op", op, "attempt", attempt, "error", err)
			return err
		}
		return nil
	})
}

// retryable403Reasons are the forbidden reasons that indicate throttling
// rather than a real authorization failure.
var retryable403Reasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// isTransient reports whether an API error is worth retrying. Server errors
// and throttling are; auth failures, malformed requests and redundant
// transitions are not. Anything that is not a typed API error is assumed to
// be a transport problem and retried.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= 500 || gerr.Code == http.StatusTooManyRequests {
			return true
		}
		if gerr.Code == http.StatusForbidden {
			for _, item := range gerr.Errors {
				if retryable403Reasons[item.Reason] {
					return true
				}
			}
		}
		return false
	}
	return true
}

// InsertStream creates the reusable RTMP ingest stream.
func (c *Client) InsertStream(ctx context.Context, title string) (*StreamEndpoint, error) {
	stream := &youtube.LiveStream{
		Snippet: &youtube.LiveStreamSnippet{Title: title},
		Cdn: &youtube.CdnSettings{
			FrameRate:     "variable",
			IngestionType: "rtmp",
			Resolution:    "variable",
		},
		ContentDetails: &youtube.LiveStreamContentDetails{IsReusable: true},
	}

	var ep *StreamEndpoint
	err := c.execute(ctx, "insert stream", func(ctx context.Context) error {
		resp, err := c.service.LiveStreams.
			Insert([]string{"snippet", "cdn", "contentDetails"}, stream).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		ingest := resp.Cdn.IngestionInfo
		ep = &StreamEndpoint{
			ID:        resp.Id,
			IngestURL: ingest.IngestionAddress + "/" + ingest.StreamName,
		}
		return nil
	})
	if err != nil {
		return nil, &APIError{Op: "insert stream", Err: err}
	}
	return ep, nil
}

// StreamHealth returns the stream's current streamStatus. A stream that is
// not in the listing yet counts as a retryable condition, since a freshly
// inserted stream can lag out of the remote's reads.
func (c *Client) StreamHealth(ctx context.Context, streamID string) (string, error) {
	var status string
	err := c.execute(ctx, "stream health", func(ctx context.Context) error {
		resp, err := c.service.LiveStreams.
			List([]string{"status"}).
			Id(streamID).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("stream %s not in listing", streamID)
		}
		status = resp.Items[0].Status.StreamStatus
		return nil
	})
	if err != nil {
		return "", &APIError{Op: "stream health", ID: streamID, Err: err}
	}
	return status, nil
}

// InsertBroadcast creates a liveBroadcast for the requested window.
func (c *Client) InsertBroadcast(ctx context.Context, req BroadcastRequest) (string, error) {
	broadcast := &youtube.LiveBroadcast{
		Snippet: &youtube.LiveBroadcastSnippet{
			Title:              req.Title,
			Description:        req.Description,
			ScheduledStartTime: req.StartTime.Format(time.RFC3339),
			ScheduledEndTime:   req.EndTime.Format(time.RFC3339),
		},
		ContentDetails: &youtube.LiveBroadcastContentDetails{
			EnableAutoStart:      false,
			EnableAutoStop:       false,
			EnableClosedCaptions: false,
			EnableDvr:            true,
			RecordFromStart:      true,
			StartWithSlate:       false,
			MonitorStream: &youtube.MonitorStreamInfo{
				EnableMonitorStream: false,
				// False must go over the wire or the API applies its
				// default of true.
				ForceSendFields: []string{"EnableMonitorStream"},
			},
			ForceSendFields: []string{"EnableAutoStart", "EnableAutoStop", "EnableClosedCaptions", "StartWithSlate"},
		},
		Status: &youtube.LiveBroadcastStatus{
			PrivacyStatus:           req.PrivacyStatus,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	var id string
	err := c.execute(ctx, "insert broadcast", func(ctx context.Context) error {
		resp, err := c.service.LiveBroadcasts.
			Insert([]string{"snippet", "contentDetails", "status"}, broadcast).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		id = resp.Id
		return nil
	})
	if err != nil {
		return "", &APIError{Op: "insert broadcast", Err: err}
	}
	return id, nil
}

// BindBroadcast attaches a broadcast to an ingest stream.
func (c *Client) BindBroadcast(ctx context.Context, broadcastID, streamID string) error {
	err := c.execute(ctx, "bind broadcast", func(ctx context.Context) error {
		_, err := c.service.LiveBroadcasts.
			Bind(broadcastID, []string{"id", "contentDetails"}).
			StreamId(streamID).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "bind broadcast", ID: broadcastID, Err: err}
	}
	return nil
}

// TransitionBroadcast moves a broadcast to the given lifecycle status.
// Redundant transitions come back as an error; use IsRedundantTransition to
// recognize them.
func (c *Client) TransitionBroadcast(ctx context.Context, broadcastID, status string) error {
	err := c.execute(ctx, "transition broadcast", func(ctx context.Context) error {
		_, err := c.service.LiveBroadcasts.
			Transition(status, broadcastID, []string{"status"}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "transition to " + status, ID: broadcastID, Err: err}
	}
	return nil
}

// BroadcastLifecycle returns a broadcast's current lifeCycleStatus.
func (c *Client) BroadcastLifecycle(ctx context.Context, broadcastID string) (string, error) {
	var status string
	err := c.execute(ctx, "broadcast lifecycle", func(ctx context.Context) error {
		resp, err := c.service.LiveBroadcasts.
			List([]string{"status"}).
			Id(broadcastID).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("broadcast %s not in listing", broadcastID)
		}
		status = resp.Items[0].Status.LifeCycleStatus
		return nil
	})
	if err != nil {
		return "", &APIError{Op: "broadcast lifecycle", ID: broadcastID, Err: err}
	}
	return status, nil
}

// ListBroadcasts returns all broadcasts with the given status, following
// pagination to the end.
func (c *Client) ListBroadcasts(ctx context.Context, status string) ([]RemoteBroadcast, error) {
	var all []RemoteBroadcast
	pageToken := ""
	for {
		var resp *youtube.LiveBroadcastListResponse
		err := c.execute(ctx, "list broadcasts", func(ctx context.Context) error {
			var err error
			resp, err = c.service.LiveBroadcasts.
				List([]string{"id", "snippet", "status", "contentDetails"}).
				BroadcastStatus(status).
				MaxResults(50).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "list " + status + " broadcasts", Err: err}
		}

		for _, item := range resp.Items {
			rb := RemoteBroadcast{ID: item.Id}
			if item.Snippet != nil {
				rb.Title = item.Snippet.Title
				rb.ScheduledStart = item.Snippet.ScheduledStartTime
				rb.ScheduledEnd = item.Snippet.ScheduledEndTime
				rb.ActualStart = item.Snippet.ActualStartTime
				rb.ActualEnd = item.Snippet.ActualEndTime
			}
			if item.Status != nil {
				rb.LifeCycleStatus = item.Status.LifeCycleStatus
			}
			if item.ContentDetails != nil {
				rb.BoundStreamID = item.ContentDetails.BoundStreamId
			}
			all = append(all, rb)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return all, nil
		}
	}
}

// DeleteBroadcast removes a broadcast outright.
func (c *Client) DeleteBroadcast(ctx context.Context, broadcastID string) error {
	err := c.execute(ctx, "delete broadcast", func(ctx context.Context) error {
		return c.service.LiveBroadcasts.Delete(broadcastID).Context(ctx).Do()
	})
	if err != nil {
		return &APIError{Op: "delete broadcast", ID: broadcastID, Err: err}
	}
	return nil
}

// UpdateVideoText replaces a video's title and description. The current
// snippet is fetched first so the update carries full metadata, with the
// configured category, tags and language re-applied.
func (c *Client) UpdateVideoText(ctx context.Context, videoID, title, description string) error {
	err := c.execute(ctx, "update video", func(ctx context.Context) error {
		resp, err := c.service.Videos.
			List([]string{"snippet"}).
			Id(videoID).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("video %s not in listing", videoID)
		}

		snippet := resp.Items[0].Snippet
		snippet.Title = title
		snippet.Description = description
		snippet.CategoryId = c.cfg.CategoryID
		snippet.DefaultLanguage = c.cfg.DefaultLanguage
		if len(c.cfg.Tags) > 0 {
			snippet.Tags = c.cfg.Tags
		}

		_, err = c.service.Videos.
			Update([]string{"snippet"}, &youtube.Video{Id: videoID, Snippet: snippet}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "update video", ID: videoID, Err: err}
	}
	return nil
}

// InsertPlaylist creates a playlist with the configured privacy status.
func (c *Client) InsertPlaylist(ctx context.Context, title, description string) (string, error) {
	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: title, Description: description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: c.cfg.PrivacyStatus},
	}

	var id string
	err := c.execute(ctx, "insert playlist", func(ctx context.Context) error {
		resp, err := c.service.Playlists.
			Insert([]string{"snippet", "status"}, playlist).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		id = resp.Id
		return nil
	})
	if err != nil {
		return "", &APIError{Op: "insert playlist", Err: err}
	}
	return id, nil
}

// ListPlaylists returns all of the channel's playlists.
func (c *Client) ListPlaylists(ctx context.Context) ([]PlaylistInfo, error) {
	var all []PlaylistInfo
	pageToken := ""
	for {
		var resp *youtube.PlaylistListResponse
		err := c.execute(ctx, "list playlists", func(ctx context.Context) error {
			var err error
			resp, err = c.service.Playlists.
				List([]string{"id", "snippet"}).
				Mine(true).
				MaxResults(50).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "list playlists", Err: err}
		}

		for _, item := range resp.Items {
			info := PlaylistInfo{ID: item.Id}
			if item.Snippet != nil {
				info.Title = item.Snippet.Title
			}
			all = append(all, info)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return all, nil
		}
	}
}

// UpdatePlaylistPrivacy changes a playlist's privacy status. The existing
// title is passed through because playlists.update rejects a snippet
// without one.
func (c *Client) UpdatePlaylistPrivacy(ctx context.Context, playlistID, title, privacy string) error {
	playlist := &youtube.Playlist{
		Id:      playlistID,
		Snippet: &youtube.PlaylistSnippet{Title: title},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privacy},
	}

	err := c.execute(ctx, "update playlist privacy", func(ctx context.Context) error {
		_, err := c.service.Playlists.
			Update([]string{"snippet", "status"}, playlist).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "update playlist privacy", ID: playlistID, Err: err}
	}
	return nil
}

// DeletePlaylist removes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	err := c.execute(ctx, "delete playlist", func(ctx context.Context) error {
		return c.service.Playlists.Delete(playlistID).Context(ctx).Do()
	})
	if err != nil {
		return &APIError{Op: "delete playlist", ID: playlistID, Err: err}
	}
	return nil
}

// InsertPlaylistItem appends a video to the end of a playlist.
func (c *Client) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
		},
	}

	err := c.execute(ctx, "insert playlist item", func(ctx context.Context) error {
		_, err := c.service.PlaylistItems.
			Insert([]string{"snippet"}, item).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "insert playlist item", ID: playlistID, Err: err}
	}
	return nil
}

// ListPlaylistItems returns all entries of a playlist.
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItemInfo, error) {
	var all []PlaylistItemInfo
	pageToken := ""
	for {
		var resp *youtube.PlaylistItemListResponse
		err := c.execute(ctx, "list playlist items", func(ctx context.Context) error {
			var err error
			resp, err = c.service.PlaylistItems.
				List([]string{"id", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(50).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "list playlist items", ID: playlistID, Err: err}
		}

		for _, item := range resp.Items {
			info := PlaylistItemInfo{ID: item.Id}
			if item.ContentDetails != nil {
				info.VideoID = item.ContentDetails.VideoId
			}
			all = append(all, info)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return all, nil
		}
	}
}

// DeletePlaylistItem removes one playlist entry by item ID.
func (c *Client) DeletePlaylistItem(ctx context.Context, itemID string) error {
	err := c.execute(ctx, "delete playlist item", func(ctx context.Context) error {
		return c.service.PlaylistItems.Delete(itemID).Context(ctx).Do()
	})
	if err != nil {
		return &APIError{Op: "delete playlist item", ID: itemID, Err: err}
	}
	return nil
}
