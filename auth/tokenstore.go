package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// Sentinel errors for token persistence.
var (
	// ErrNoToken indicates no token has been stored yet.
	ErrNoToken = errors.New("auth: no stored token")
	// ErrLockTimeout indicates a timeout acquiring the token file lock.
	ErrLockTimeout = errors.New("auth: lock acquisition timeout")
)

// lockTimeout bounds how long Load and Save wait for the token file lock.
const lockTimeout = 5 * time.Second

// StoreError wraps token store errors with operation context.
// Use errors.As() to extract this error type:
//
//	var storeErr *auth.StoreError
//	if errors.As(err, &storeErr) {
//		fmt.Printf("Failed to %s %s: %v\n", storeErr.Op, storeErr.Path, storeErr.Err)
//	}
type StoreError struct {
	// Op is the operation that failed ("load" or "save").
	Op string
	// Path is the token file path.
	Path string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the store error.
func (e *StoreError) Error() string {
	return fmt.Sprintf("auth: %s token %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StoreError) Unwrap() error { return e.Err }

// TokenStore persists OAuth tokens as JSON at a fixed path. Writes are
// atomic and guarded by an advisory file lock, so a second process
// refreshing the same token cannot corrupt the file.
type TokenStore struct {
	// Path is the token file location.
	Path string
}

// Load reads the stored token. It returns ErrNoToken if no token file
// exists yet.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	lock := newFileLock(s.Path)
	if err := lock.Lock(lockTimeout); err != nil {
		return nil, &StoreError{Op: "load", Path: s.Path, Err: err}
	}
	defer lock.Unlock()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, &StoreError{Op: "load", Path: s.Path, Err: err}
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, &StoreError{Op: "load", Path: s.Path, Err: err}
	}
	return &tok, nil
}

// Save writes the token, atomically replacing any previous one.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Path: s.Path, Err: err}
	}

	lock := newFileLock(s.Path)
	if err := lock.Lock(lockTimeout); err != nil {
		return &StoreError{Op: "save", Path: s.Path, Err: err}
	}
	defer lock.Unlock()

	w, err := newAtomicWriter(s.Path)
	if err != nil {
		return &StoreError{Op: "save", Path: s.Path, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return &StoreError{Op: "save", Path: s.Path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return &StoreError{Op: "save", Path: s.Path, Err: err}
	}
	return nil
}
