package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStoreLoadNoToken(t *testing.T) {
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}

	_, err := store.Load()
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Load() error = %v, want ErrNoToken", err)
	}
}

func TestTokenStoreSaveLoad(t *testing.T) {
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}

	want := &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Expiry:       time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, want.AccessToken)
	}
	if got.RefreshToken != want.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", got.RefreshToken, want.RefreshToken)
	}
	if got.TokenType != want.TokenType {
		t.Errorf("TokenType = %q, want %q", got.TokenType, want.TokenType)
	}
	if !got.Expiry.Equal(want.Expiry) {
		t.Errorf("Expiry = %v, want %v", got.Expiry, want.Expiry)
	}
}

func TestTokenStoreSaveOverwrites(t *testing.T) {
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}

	if err := store.Save(&oauth2.Token{AccessToken: "first"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(&oauth2.Token{AccessToken: "second"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != "second" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "second")
	}
}

func TestTokenStoreSaveCreatesDirectory(t *testing.T) {
	store := &TokenStore{Path: filepath.Join(t.TempDir(), "nested", "dir", "token.json")}

	if err := store.Save(&oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(); err != nil {
		t.Errorf("Load() after nested Save() error = %v", err)
	}
}

func TestTokenStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := &TokenStore{Path: path}
	_, err := store.Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Load() error = %T, want *StoreError", err)
	}
	if storeErr.Op != "load" {
		t.Errorf("StoreError.Op = %q, want %q", storeErr.Op, "load")
	}
	if storeErr.Path != path {
		t.Errorf("StoreError.Path = %q, want %q", storeErr.Path, path)
	}
}

func TestFileLockExcludesSecondLocker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	first := newFileLock(path)
	if err := first.Lock(time.Second); err != nil {
		t.Fatalf("first Lock() error = %v", err)
	}

	second := newFileLock(path)
	if err := second.Lock(50 * time.Millisecond); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("second Lock() error = %v, want ErrLockTimeout", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := second.Lock(time.Second); err != nil {
		t.Errorf("Lock() after Unlock() error = %v", err)
	}
	second.Unlock()
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &StoreError{Op: "save", Path: "/tmp/token.json", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not find the wrapped cause")
	}
	want := "auth: save token /tmp/token.json: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
