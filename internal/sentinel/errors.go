package sentinel

import (
	"errors"
	"fmt"
)

// ErrRemoteUnavailable marks a connection-level failure reaching the
// analysis service (unreachable, timeout, DNS). Handlers never surface it
// to the caller; it always selects the fallback path.
var ErrRemoteUnavailable = errors.New("analysis service unreachable")

// maxExcerptLen caps how much of an error response body is carried around.
const maxExcerptLen = 200

// RemoteError is a non-success response from the analysis service.
type RemoteError struct {
	Status  int
	Excerpt string
}

func (e *RemoteError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("analysis service returned %d", e.Status)
	}
	return fmt.Sprintf("analysis service returned %d: %s", e.Status, e.Excerpt)
}

// IsRemoteFailure reports whether err is any failure of the analysis
// service, unreachable or an error response. Handlers treat both the
// same way: fall back to local state.
func IsRemoteFailure(err error) bool {
	if errors.Is(err, ErrRemoteUnavailable) {
		return true
	}
	var re *RemoteError
	return errors.As(err, &re)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
