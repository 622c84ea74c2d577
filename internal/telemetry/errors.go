package telemetry

import (
	"errors"
	"fmt"
)

// FetchErrorKind categorizes a telemetry or geocode fetch failure
type FetchErrorKind string

const (
	// KindNetwork covers timeouts, connection refusals and other
	// transport-level failures
	KindNetwork FetchErrorKind = "network"
	// KindHTTP covers non-2xx responses
	KindHTTP FetchErrorKind = "http"
	// KindParse covers malformed JSON bodies and missing required fields
	KindParse FetchErrorKind = "parse"
)

// FetchError is returned by Client.Fetch for any failure. Callers that
// only need to know a tick failed can treat it as a plain error; the
// Kind is available for logging and tests.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("telemetry fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(kind FetchErrorKind, format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ErrorKind extracts the FetchErrorKind from an error chain. The second
// return value is false if the error is not a FetchError.
func ErrorKind(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
