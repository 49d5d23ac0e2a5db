package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrSuperseded marks a lookup cancelled because a newer one started.
	ErrSuperseded = errors.New("lookup superseded by a newer request")
	// ErrDuplicateDigest marks a collection holding the same hash under two keys.
	ErrDuplicateDigest = errors.New("duplicate digest in collection")
	// ErrBodyTooLarge marks a response body over the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds limit")
)

// TransportError reports that the collection could not be obtained: the
// request failed, timed out, was cancelled, or returned a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("transport error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.URL != "" {
		b.WriteString(" fetching ")
		b.WriteString(e.URL)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline being exceeded.
func (e *TransportError) Timeout() bool {
	if e == nil || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// DecodeError reports a response body that is not a valid record collection.
// Key and Field locate the offending record when the problem is per-record.
type DecodeError struct {
	Key    string
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode error")
	if e.Key != "" {
		fmt.Fprintf(&b, ": record %q", e.Key)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsDecode reports whether err carries a *DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}
