package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

var (
	_ API      = (*fakeAPI)(nil)
	_ Clock    = (*fakeClock)(nil)
	_ Notifier = (*fakeNotifier)(nil)
)

// discardLogger returns a logger for wiring components under test.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeClock returns scripted times. step, when set, advances the clock on
// every Now call so bounded polls can run out of budget.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeAPI is an in-memory API implementation with call recording and
// per-call error injection.
type fakeAPI struct {
	// streams
	insertStreamCalls int
	streamTitles      []string
	streamErr         error
	healthSeq         []string // consumed one per call; the last value repeats; empty means active
	healthCalls       int
	healthErr         error

	// broadcasts
	nextBroadcastID    int
	inserted           []BroadcastRequest
	insertErr          error
	binds              map[string]string
	bindErr            error
	transitions        map[string][]string
	transitionErr      map[string]error
	remote             map[string][]RemoteBroadcast
	listBroadcastsErr  error
	deletedBroadcasts  []string
	deleteBroadcastErr map[string]error

	// videos
	videoTitles map[string]string
	videoDescs  map[string]string
	updateErr   error

	// playlists
	nextPlaylistID     int
	playlists          []PlaylistInfo
	playlistDescs      map[string]string
	nextItemID         int
	playlistItems      map[string][]PlaylistItemInfo
	listPlaylistsCalls int
	listPlaylistsErr   error
	insertPlaylistErr  error
	insertItemErr      error
	listItemsErr       error
	deletedItems       []string
	deleteItemErr      error
	deletedPlaylists   []string
	privacyUpdates     map[string]string
	privacyTitles      map[string]string
	updatePrivacyErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		binds:              make(map[string]string),
		transitions:        make(map[string][]string),
		transitionErr:      make(map[string]error),
		remote:             make(map[string][]RemoteBroadcast),
		deleteBroadcastErr: make(map[string]error),
		videoTitles:        make(map[string]string),
		videoDescs:         make(map[string]string),
		playlistDescs:      make(map[string]string),
		playlistItems:      make(map[string][]PlaylistItemInfo),
		privacyUpdates:     make(map[string]string),
		privacyTitles:      make(map[string]string),
	}
}

func (f *fakeAPI) InsertStream(ctx context.Context, title string) (*StreamEndpoint, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	f.insertStreamCalls++
	f.streamTitles = append(f.streamTitles, title)
	return &StreamEndpoint{
		ID:        fmt.Sprintf("stream-%d", f.insertStreamCalls),
		IngestURL: "rtmp://a.rtmp.youtube.com/live2/key",
	}, nil
}

func (f *fakeAPI) StreamHealth(ctx context.Context, streamID string) (string, error) {
	f.healthCalls++
	if f.healthErr != nil {
		return "", f.healthErr
	}
	if len(f.healthSeq) == 0 {
		return StreamActive, nil
	}
	h := f.healthSeq[0]
	if len(f.healthSeq) > 1 {
		f.healthSeq = f.healthSeq[1:]
	}
	return h, nil
}

func (f *fakeAPI) InsertBroadcast(ctx context.Context, req BroadcastRequest) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextBroadcastID++
	f.inserted = append(f.inserted, req)
	return fmt.Sprintf("bc-%d", f.nextBroadcastID), nil
}

func (f *fakeAPI) BindBroadcast(ctx context.Context, broadcastID, streamID string) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.binds[broadcastID] = streamID
	return nil
}

func (f *fakeAPI) TransitionBroadcast(ctx context.Context, broadcastID, status string) error {
	if err := f.transitionErr[broadcastID]; err != nil {
		return err
	}
	f.transitions[broadcastID] = append(f.transitions[broadcastID], status)
	return nil
}

func (f *fakeAPI) BroadcastLifecycle(ctx context.Context, broadcastID string) (string, error) {
	statuses := f.transitions[broadcastID]
	if len(statuses) == 0 {
		return "ready", nil
	}
	return statuses[len(statuses)-1], nil
}

func (f *fakeAPI) ListBroadcasts(ctx context.Context, status string) ([]RemoteBroadcast, error) {
	if f.listBroadcastsErr != nil {
		return nil, f.listBroadcastsErr
	}
	return f.remote[status], nil
}

func (f *fakeAPI) DeleteBroadcast(ctx context.Context, broadcastID string) error {
	if err := f.deleteBroadcastErr[broadcastID]; err != nil {
		return err
	}
	f.deletedBroadcasts = append(f.deletedBroadcasts, broadcastID)
	for status, remotes := range f.remote {
		for i, r := range remotes {
			if r.ID == broadcastID {
				f.remote[status] = append(remotes[:i], remotes[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (f *fakeAPI) UpdateVideoText(ctx context.Context, videoID, title, description string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.videoTitles[videoID] = title
	f.videoDescs[videoID] = description
	return nil
}

func (f *fakeAPI) InsertPlaylist(ctx context.Context, title, description string) (string, error) {
	if f.insertPlaylistErr != nil {
		return "", f.insertPlaylistErr
	}
	f.nextPlaylistID++
	id := fmt.Sprintf("pl-%d", f.nextPlaylistID)
	f.playlists = append(f.playlists, PlaylistInfo{ID: id, Title: title})
	f.playlistDescs[id] = description
	return id, nil
}

func (f *fakeAPI) ListPlaylists(ctx context.Context) ([]PlaylistInfo, error) {
	f.listPlaylistsCalls++
	if f.listPlaylistsErr != nil {
		return nil, f.listPlaylistsErr
	}
	return append([]PlaylistInfo(nil), f.playlists...), nil
}

func (f *fakeAPI) UpdatePlaylistPrivacy(ctx context.Context, playlistID, title, privacy string) error {
	if f.updatePrivacyErr != nil {
		return f.updatePrivacyErr
	}
	f.privacyUpdates[playlistID] = privacy
	f.privacyTitles[playlistID] = title
	return nil
}

func (f *fakeAPI) DeletePlaylist(ctx context.Context, playlistID string) error {
	f.deletedPlaylists = append(f.deletedPlaylists, playlistID)
	for i, p := range f.playlists {
		if p.ID == playlistID {
			f.playlists = append(f.playlists[:i], f.playlists[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	if f.insertItemErr != nil {
		return f.insertItemErr
	}
	f.nextItemID++
	f.playlistItems[playlistID] = append(f.playlistItems[playlistID], PlaylistItemInfo{
		ID:      fmt.Sprintf("item-%d", f.nextItemID),
		VideoID: videoID,
	})
	return nil
}

func (f *fakeAPI) ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItemInfo, error) {
	if f.listItemsErr != nil {
		return nil, f.listItemsErr
	}
	return append([]PlaylistItemInfo(nil), f.playlistItems[playlistID]...), nil
}

func (f *fakeAPI) DeletePlaylistItem(ctx context.Context, itemID string) error {
	if f.deleteItemErr != nil {
		return f.deleteItemErr
	}
	f.deletedItems = append(f.deletedItems, itemID)
	for playlistID, items := range f.playlistItems {
		for i, item := range items {
			if item.ID == itemID {
				f.playlistItems[playlistID] = append(items[:i], items[i+1:]...)
				break
			}
		}
	}
	return nil
}

// fakeNotifier records operator notices.
type fakeNotifier struct {
	subjects []string
	bodies   []string
}

func (n *fakeNotifier) Notify(ctx context.Context, subject, body string) {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
}
