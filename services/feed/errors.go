package feed

import (
	"errors"
	"fmt"
)

// MaxRetries is the number of consecutive failed retries after which Retry is refused
// until Refresh. The failure that made the feed retryable is not counted.
const MaxRetries = 3

var (
	// ErrRetryExhausted is returned by Retry once the retry budget is spent.
	ErrRetryExhausted = errors.New("retry limit reached; refresh the feed")
	// ErrSessionNotFound is returned for unknown or expired feed sessions.
	ErrSessionNotFound = errors.New("feed session not found")
	// ErrUnknownTab is returned for tab names other than forYou and following.
	ErrUnknownTab = errors.New("unknown feed tab")
)

// MappingError reports a stored record whose shape the transformer does not know.
type MappingError struct {
	RecordID    string
	ContentType string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map record %s: unknown content type %q", e.RecordID, e.ContentType)
}

// NetworkError wraps a failed call to the content store.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
