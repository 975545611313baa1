package transport

import (
	"errors"
	"fmt"
)

// Kind classifies a failed fetch. Every failure the pipeline can produce maps
// to exactly one kind so callers can decide how to present it.
type Kind string

const (
	// KindRedirectWithoutLocation: a 3xx response carried no Location header.
	KindRedirectWithoutLocation Kind = "redirect_without_location"

	// KindTooManyRedirects: the redirect bound was exhausted. The upstream
	// service answers a rejected session cookie with a redirect chain to its
	// login page rather than a 401, so this is the canonical expired-auth
	// signal.
	KindTooManyRedirects Kind = "too_many_redirects"

	// KindHTTPStatus: a non-2xx, non-3xx status code. Status holds the code.
	KindHTTPStatus Kind = "http_status"

	// KindConnection: connect-level failure (refused, DNS, reset).
	KindConnection Kind = "connection"

	// KindTimeout: the request exceeded the socket timeout.
	KindTimeout Kind = "timeout"

	// KindInvalidFormat: a 2xx body that is not valid JSON. Produced by the
	// usage layer, not by Transport itself.
	KindInvalidFormat Kind = "invalid_response_format"

	// KindInvalidStructure: valid JSON missing required sections. Produced by
	// the usage layer.
	KindInvalidStructure Kind = "invalid_response_structure"
)

// Error is the classified fetch error.
type Error struct {
	Kind   Kind
	Status int    // set for KindHTTPStatus
	URL    string // the hop that failed
	Err    error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("transport: HTTP %d from %s", e.Status, e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("transport: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("transport: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a classified Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// KindOf returns the classification of err, or "" if err is not classified.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
