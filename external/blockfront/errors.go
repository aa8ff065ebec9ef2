package blockfront

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	errTimeout    = crerr.New("request timed out")
	errBadStatus  = crerr.New("unexpected response status")
	errNotJSON    = crerr.New("response body is not json")
	errConnection = crerr.New("connection failed")
)

// NetworkError is returned for every failed call: timeouts, connection
// failures, non-2xx statuses, and bodies that are not JSON.
type NetworkError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("blockfront %s %s failed with status %d: %v", e.Method, e.Endpoint, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("blockfront %s %s failed: %v", e.Method, e.Endpoint, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether err is a NetworkError caused by the request timeout.
func IsTimeout(err error) bool {
	return crerr.Is(err, errTimeout)
}

// circuitFailure decides which errors trip the breaker. Client-side 4xx
// answers mean the upstream is alive.
func circuitFailure(err error) bool {
	var netErr *NetworkError
	if !crerr.As(err, &netErr) {
		return true
	}
	if netErr.StatusCode >= 400 && netErr.StatusCode < 500 && netErr.StatusCode != 429 {
		return false
	}
	return true
}
