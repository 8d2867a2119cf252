package youtube

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for broadcast scheduling operations.
var (
	// ErrNotScheduled indicates a start was requested for an instant with
	// no scheduled broadcast.
	ErrNotScheduled = errors.New("youtube: no scheduled broadcast at start time")
	// ErrNotLive indicates an end was requested for an instant with no
	// live broadcast.
	ErrNotLive = errors.New("youtube: no live broadcast at start time")
	// ErrStreamNotActive indicates the ingest stream did not report active
	// within the poll budget.
	ErrStreamNotActive = errors.New("youtube: stream not active")
	// ErrRedundantTransition indicates the broadcast is already in the
	// requested lifecycle state.
	ErrRedundantTransition = errors.New("youtube: redundant transition")
)

// APIError wraps remote API failures with context about what failed.
// Use errors.As() to extract this error type and get operation details:
//
//	var apiErr *youtube.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("Failed to %s %s: %v\n", apiErr.Op, apiErr.ID, apiErr.Err)
//	}
type APIError struct {
	// Op is the remote operation that failed ("insert broadcast", "bind", ...).
	Op string
	// ID is the resource ID if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("youtube: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("youtube: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *APIError) Unwrap() error { return e.Err }

// IsRedundantTransition reports whether err is the remote's way of saying
// the broadcast already holds the requested state. Callers that were moving
// the state forward anyway treat it as success.
func IsRedundantTransition(err error) bool {
	if errors.Is(err, ErrRedundantTransition) {
		return true
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, item := range gerr.Errors {
		if item.Reason == "redundantTransition" {
			return true
		}
	}
	return strings.Contains(gerr.Message, "Redundant transition")
}
