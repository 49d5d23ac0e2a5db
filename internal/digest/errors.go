package digest

import "errors"

// ErrEmptyInput marks hashing attempts over zero bytes.
var ErrEmptyInput = errors.New("empty input")

// EncodingError reports that image bytes could not be turned into a digest.
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return "encoding error: " + e.Reason + ": " + e.Err.Error()
	case e.Err != nil:
		return "encoding error: " + e.Err.Error()
	case e.Reason != "":
		return "encoding error: " + e.Reason
	default:
		return "encoding error"
	}
}

func (e *EncodingError) Unwrap() error { return e.Err }
