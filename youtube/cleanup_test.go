package youtube

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCleanupRunNothingToDo(t *testing.T) {
	api := newFakeAPI()
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	deleted, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
	if api.listPlaylistsCalls != 0 {
		t.Errorf("listed playlists %d times with nothing to clean", api.listPlaylistsCalls)
	}
}

func TestCleanupRunDeletesAndUnfiles(t *testing.T) {
	api := newFakeAPI()
	api.remote[BroadcastStatusUpcoming] = []RemoteBroadcast{
		{ID: "bc-up-1", Title: "Livestream on Mon 01 Jul at 10:00", ScheduledStart: "2024-07-01T10:00:00Z"},
		{ID: "bc-up-2", Title: "Livestream on Mon 01 Jul at 16:00", ScheduledStart: "2024-07-01T16:00:00Z"},
	}
	api.playlists = []PlaylistInfo{{ID: "pl-w27", Title: "W27: w/c 01 Jul 2024"}}
	api.playlistItems["pl-w27"] = []PlaylistItemInfo{
		{ID: "item-1", VideoID: "bc-up-1"},
		{ID: "item-2", VideoID: "bc-other"},
	}
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	deleted, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if len(api.deletedBroadcasts) != 2 || api.deletedBroadcasts[0] != "bc-up-1" || api.deletedBroadcasts[1] != "bc-up-2" {
		t.Errorf("deleted broadcasts = %v, want [bc-up-1 bc-up-2]", api.deletedBroadcasts)
	}
	if len(api.deletedItems) != 1 || api.deletedItems[0] != "item-1" {
		t.Errorf("deleted playlist items = %v, want [item-1]", api.deletedItems)
	}
	left := api.playlistItems["pl-w27"]
	if len(left) != 1 || left[0].VideoID != "bc-other" {
		t.Errorf("remaining playlist items = %+v, want only bc-other", left)
	}
	if api.listPlaylistsCalls != 1 {
		t.Errorf("listed playlists %d times, want 1 per sweep", api.listPlaylistsCalls)
	}
}

func TestCleanupRunSurvivesPlaylistFailures(t *testing.T) {
	api := newFakeAPI()
	api.remote[BroadcastStatusUpcoming] = []RemoteBroadcast{
		{ID: "bc-up-1", ScheduledStart: "2024-07-01T10:00:00Z"},
	}
	api.playlists = []PlaylistInfo{{ID: "pl-w27", Title: "W27: w/c 01 Jul 2024"}}
	api.playlistItems["pl-w27"] = []PlaylistItemInfo{{ID: "item-1", VideoID: "bc-up-1"}}
	api.listItemsErr = errors.New("list items failed")
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	deleted, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 despite playlist failure", deleted)
	}
	if len(api.deletedBroadcasts) != 1 {
		t.Errorf("deleted broadcasts = %v, want [bc-up-1]", api.deletedBroadcasts)
	}
}

func TestCleanupRunUnparseableStartStillDeletes(t *testing.T) {
	api := newFakeAPI()
	api.remote[BroadcastStatusUpcoming] = []RemoteBroadcast{
		{ID: "bc-up-1", ScheduledStart: "sometime soon"},
	}
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	deleted, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if api.listPlaylistsCalls != 0 {
		t.Error("tried to resolve a week playlist for an unparseable start")
	}
}

func TestCleanupRunAbortsOnDeleteFailure(t *testing.T) {
	api := newFakeAPI()
	api.remote[BroadcastStatusUpcoming] = []RemoteBroadcast{
		{ID: "bc-up-1", ScheduledStart: "2024-07-01T10:00:00Z"},
		{ID: "bc-up-2", ScheduledStart: "2024-07-01T16:00:00Z"},
	}
	api.deleteBroadcastErr["bc-up-2"] = errors.New("delete failed")
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	deleted, err := sweep.Run(context.Background())
	if err == nil {
		t.Fatal("Run succeeded, want delete error")
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 before the failure", deleted)
	}
}

func TestCleanupRunListFailure(t *testing.T) {
	api := newFakeAPI()
	api.listBroadcastsErr = errors.New("list failed")
	sweep := NewCleanupSweep(api, time.UTC, discardLogger())

	if _, err := sweep.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded, want listing error")
	}
}
