package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// IngestEndpoint owns the process's one reusable RTMP ingest stream. The
// encoder is pointed at the IngestURL once; every broadcast binds to the
// same stream. Methods must be called from a single goroutine.
type IngestEndpoint struct {
	api   API
	title string
	clock Clock
	log   *slog.Logger

	cached *StreamEndpoint
}

// NewIngestEndpoint returns an endpoint that creates its remote stream
// lazily. title is the display name used in the stream title.
func NewIngestEndpoint(api API, title string, clock Clock, log *slog.Logger) *IngestEndpoint {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &IngestEndpoint{api: api, title: title, clock: clock, log: log}
}

// GetOrCreate returns the endpoint, inserting the remote stream on first
// use. Later calls return the cached endpoint without a network call.
func (e *IngestEndpoint) GetOrCreate(ctx context.Context) (*StreamEndpoint, error) {
	if e.cached != nil {
		return e.cached, nil
	}

	title := fmt.Sprintf("%s ingest %s", e.title, e.clock.Now().Format(time.RFC3339))
	ep, err := e.api.InsertStream(ctx, title)
	if err != nil {
		return nil, err
	}
	e.cached = ep
	e.log.Info("created ingest stream", "stream_id", ep.ID, "ingest_url", ep.IngestURL)
	return ep, nil
}

// ID returns the stream ID, or "" before the first GetOrCreate.
func (e *IngestEndpoint) ID() string {
	if e.cached == nil {
		return ""
	}
	return e.cached.ID
}
