package youtube

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAddToWeekPlaylistCreatesPlaylist(t *testing.T) {
	api := newFakeAPI()
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	pl, err := f.AddToWeekPlaylist(context.Background(), "bc-1", start)
	if err != nil {
		t.Fatalf("AddToWeekPlaylist: %v", err)
	}
	if pl.Title != "W27: w/c 01 Jul 2024" {
		t.Errorf("playlist title = %q", pl.Title)
	}
	if len(api.playlists) != 1 || api.playlists[0].ID != pl.ID {
		t.Fatalf("remote playlists = %+v, want exactly the returned one", api.playlists)
	}
	wantDesc := "Videos of Livestream from Mon 01 July to Sun 07 July."
	if got := api.playlistDescs[pl.ID]; got != wantDesc {
		t.Errorf("playlist description = %q, want %q", got, wantDesc)
	}
	items := api.playlistItems[pl.ID]
	if len(items) != 1 || items[0].VideoID != "bc-1" {
		t.Errorf("playlist items = %+v, want one entry for bc-1", items)
	}
}

func TestAddToWeekPlaylistCachesWithinWeek(t *testing.T) {
	api := newFakeAPI()
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	ctx := context.Background()
	monday := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	thursday := time.Date(2024, 7, 4, 22, 0, 0, 0, time.UTC)

	if _, err := f.AddToWeekPlaylist(ctx, "bc-1", monday); err != nil {
		t.Fatalf("AddToWeekPlaylist: %v", err)
	}
	if _, err := f.AddToWeekPlaylist(ctx, "bc-2", thursday); err != nil {
		t.Fatalf("AddToWeekPlaylist: %v", err)
	}

	if api.listPlaylistsCalls != 1 {
		t.Errorf("listed playlists %d times, want 1 (cache hit)", api.listPlaylistsCalls)
	}
	if len(api.playlists) != 1 {
		t.Fatalf("created %d playlists, want 1", len(api.playlists))
	}
	if items := api.playlistItems[api.playlists[0].ID]; len(items) != 2 {
		t.Errorf("filed %d items, want 2", len(items))
	}
}

func TestAddToWeekPlaylistAdoptsExisting(t *testing.T) {
	api := newFakeAPI()
	api.playlists = []PlaylistInfo{{ID: "pl-existing", Title: "W27: w/c 01 Jul 2024"}}
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	pl, err := f.AddToWeekPlaylist(context.Background(), "bc-1", start)
	if err != nil {
		t.Fatalf("AddToWeekPlaylist: %v", err)
	}
	if pl.ID != "pl-existing" {
		t.Errorf("playlist ID = %q, want the existing pl-existing", pl.ID)
	}
	if len(api.playlists) != 1 {
		t.Errorf("created a duplicate playlist: %+v", api.playlists)
	}
	items := api.playlistItems["pl-existing"]
	if len(items) != 1 || items[0].VideoID != "bc-1" {
		t.Errorf("playlist items = %+v, want one entry for bc-1", items)
	}
}

func TestAddToWeekPlaylistNewWeekRollsCache(t *testing.T) {
	api := newFakeAPI()
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	ctx := context.Background()
	weekOne := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	weekTwo := time.Date(2024, 7, 8, 10, 0, 0, 0, time.UTC)

	if _, err := f.AddToWeekPlaylist(ctx, "bc-1", weekOne); err != nil {
		t.Fatalf("AddToWeekPlaylist week one: %v", err)
	}
	pl, err := f.AddToWeekPlaylist(ctx, "bc-2", weekTwo)
	if err != nil {
		t.Fatalf("AddToWeekPlaylist week two: %v", err)
	}
	if pl.Title != "W28: w/c 08 Jul 2024" {
		t.Errorf("week two title = %q", pl.Title)
	}
	if len(api.playlists) != 2 {
		t.Fatalf("created %d playlists, want 2", len(api.playlists))
	}

	// The cache now holds week two.
	if _, err := f.AddToWeekPlaylist(ctx, "bc-3", weekTwo.Add(time.Hour)); err != nil {
		t.Fatalf("AddToWeekPlaylist week two again: %v", err)
	}
	if api.listPlaylistsCalls != 2 {
		t.Errorf("listed playlists %d times, want 2", api.listPlaylistsCalls)
	}
}

func TestAddToWeekPlaylistItemFailure(t *testing.T) {
	api := newFakeAPI()
	api.insertItemErr = errors.New("insert item failed")
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	ctx := context.Background()
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	if _, err := f.AddToWeekPlaylist(ctx, "bc-1", start); err == nil {
		t.Fatal("AddToWeekPlaylist succeeded, want item error")
	}

	// The playlist itself was created and cached; a retry files without
	// listing again.
	api.insertItemErr = nil
	if _, err := f.AddToWeekPlaylist(ctx, "bc-1", start); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if api.listPlaylistsCalls != 1 {
		t.Errorf("listed playlists %d times, want 1", api.listPlaylistsCalls)
	}
	if len(api.playlists) != 1 {
		t.Errorf("created %d playlists, want 1", len(api.playlists))
	}
}

func TestAddToWeekPlaylistListFailure(t *testing.T) {
	api := newFakeAPI()
	api.listPlaylistsErr = errors.New("list failed")
	f := NewPlaylistFiler(api, "Livestream", discardLogger())
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	if _, err := f.AddToWeekPlaylist(context.Background(), "bc-1", start); err == nil {
		t.Fatal("AddToWeekPlaylist succeeded, want listing error")
	}
	if len(api.playlists) != 0 {
		t.Errorf("created %d playlists despite listing failure", len(api.playlists))
	}
}
