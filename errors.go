package ytlive

import (
	"ytlive/auth"
	"ytlive/internal/retry"
	"ytlive/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytlive.ErrStreamNotActive) {
//		fmt.Println("encoder is not sending video")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var apiErr *ytlive.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("%s failed for %s: %v\n", apiErr.Op, apiErr.ID, apiErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// APIError wraps remote YouTube Data API failures with the operation
	// and resource that failed.
	APIError = youtube.APIError
	// RetryableError wraps errors that occurred after retries were
	// exhausted. It is the only way to match the retry wrapper from
	// outside the module; the retry package itself is internal.
	RetryableError = retry.RetryableError
	// StoreError wraps errors during token storage operations.
	StoreError = auth.StoreError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrNotScheduled indicates a start was requested for an instant with
	// no scheduled broadcast.
	ErrNotScheduled = youtube.ErrNotScheduled
	// ErrNotLive indicates an end was requested for an instant with no
	// live broadcast.
	ErrNotLive = youtube.ErrNotLive
	// ErrStreamNotActive indicates the ingest stream did not report
	// active within the poll budget.
	ErrStreamNotActive = youtube.ErrStreamNotActive
	// ErrRedundantTransition indicates the broadcast already holds the
	// requested lifecycle state.
	ErrRedundantTransition = youtube.ErrRedundantTransition
	// ErrNoToken indicates no OAuth token has been stored yet.
	ErrNoToken = auth.ErrNoToken
)
