package youtube

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seededJanitor() (*fakeAPI, *PlaylistJanitor) {
	api := newFakeAPI()
	api.playlists = []PlaylistInfo{
		{ID: "pl-w26", Title: "W26: w/c 24 Jun 2024"},
		{ID: "pl-w27", Title: "W27: w/c 01 Jul 2024"},
		{ID: "pl-fav", Title: "Favourites"},
		{ID: "pl-odd", Title: "W99: w/c sometime soon"},
	}
	return api, NewPlaylistJanitor(api, time.UTC, discardLogger())
}

func TestJanitorBefore(t *testing.T) {
	api, j := seededJanitor()
	cutoff := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC) // Wednesday of week 27

	targets, err := j.Before(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Before: %v", err)
	}
	if len(targets) != 1 || targets[0].ID != "pl-w26" {
		t.Errorf("targets = %+v, want only pl-w26", targets)
	}
	if len(api.privacyUpdates) != 0 || len(api.deletedPlaylists) != 0 {
		t.Error("Before mutated playlists")
	}
}

func TestJanitorMakePrivateBefore(t *testing.T) {
	api, j := seededJanitor()
	cutoff := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)

	n, err := j.MakePrivateBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("MakePrivateBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}
	if got := api.privacyUpdates["pl-w26"]; got != "private" {
		t.Errorf("pl-w26 privacy = %q, want private", got)
	}
	// The remote update needs the existing title alongside the status.
	if got := api.privacyTitles["pl-w26"]; got != "W26: w/c 24 Jun 2024" {
		t.Errorf("pl-w26 update title = %q", got)
	}
	for _, id := range []string{"pl-w27", "pl-fav", "pl-odd"} {
		if _, touched := api.privacyUpdates[id]; touched {
			t.Errorf("playlist %s was made private, want untouched", id)
		}
	}
}

func TestJanitorDeleteBefore(t *testing.T) {
	api, j := seededJanitor()
	cutoff := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC) // Monday of week 29

	n, err := j.DeleteBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if len(api.deletedPlaylists) != 2 {
		t.Fatalf("deleted playlists = %v, want both week playlists", api.deletedPlaylists)
	}
	for _, p := range api.playlists {
		if p.ID == "pl-w26" || p.ID == "pl-w27" {
			t.Errorf("playlist %s still present after delete", p.ID)
		}
	}
	// Non-week and unparseable titles are never touched.
	if len(api.playlists) != 2 {
		t.Errorf("remaining playlists = %+v, want Favourites and the unparseable one", api.playlists)
	}
}

func TestJanitorCutoffOnWeekBoundary(t *testing.T) {
	_, j := seededJanitor()
	cutoff := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) // Monday of week 27, midnight

	targets, err := j.Before(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Before: %v", err)
	}
	// Strictly before the cutoff's week: week 27 itself stays.
	if len(targets) != 1 || targets[0].ID != "pl-w26" {
		t.Errorf("targets = %+v, want only pl-w26", targets)
	}
}

func TestJanitorAbortsOnUpdateFailure(t *testing.T) {
	api, j := seededJanitor()
	api.updatePrivacyErr = errors.New("update failed")
	cutoff := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	n, err := j.MakePrivateBefore(context.Background(), cutoff)
	if err == nil {
		t.Fatal("MakePrivateBefore succeeded, want update error")
	}
	if n != 0 {
		t.Errorf("updated = %d before the failure, want 0", n)
	}
}

func TestJanitorListFailure(t *testing.T) {
	api, j := seededJanitor()
	api.listPlaylistsErr = errors.New("list failed")

	if _, err := j.Before(context.Background(), time.Now()); err == nil {
		t.Fatal("Before succeeded, want listing error")
	}
	if _, err := j.MakePrivateBefore(context.Background(), time.Now()); err == nil {
		t.Fatal("MakePrivateBefore succeeded, want listing error")
	}
}
