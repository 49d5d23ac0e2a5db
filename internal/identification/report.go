package identification

import (
	"errors"
	"time"

	"oceaneye/internal/catalog"
	"oceaneye/internal/digest"
)

// Outcome is the closed set of ways an identification can settle.
type Outcome string

const (
	OutcomeFound          Outcome = "found"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeEncodingError  Outcome = "encoding_error"
	OutcomeDecodeError    Outcome = "decode_error"
	OutcomeTransportError Outcome = "transport_error"
)

// Outcomes lists every outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeFound, OutcomeNotFound, OutcomeEncodingError, OutcomeDecodeError, OutcomeTransportError}
}

// Failed reports whether the outcome is one of the error kinds.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeEncodingError, OutcomeDecodeError, OutcomeTransportError:
		return true
	default:
		return false
	}
}

// Advice is the user-facing class of an outcome.
type Advice string

const (
	AdviceNone         Advice = ""
	AdviceRetakePhoto  Advice = "retake_photo"
	AdviceCheckNetwork Advice = "check_network"
	AdviceSuperseded   Advice = "superseded"
)

// Message is the short line shown to the user.
func (a Advice) Message() string {
	switch a {
	case AdviceRetakePhoto:
		return "couldn't identify — try a clearer photo"
	case AdviceCheckNetwork:
		return "network problem — try again"
	case AdviceSuperseded:
		return "replaced by a newer photo"
	default:
		return ""
	}
}

// Detail is the longer explanation shown beneath Message.
func (a Advice) Detail() string {
	switch a {
	case AdviceRetakePhoto:
		return "Please submit a higher resolution picture of a fish to be identified."
	case AdviceCheckNetwork:
		return "The fish catalog could not be reached. Check your connection and try again."
	case AdviceSuperseded:
		return "A newer identification started before this one finished. No action is needed."
	default:
		return ""
	}
}

// Report is the settled result of one identification.
type Report struct {
	RequestID string
	Digest    digest.Digest
	Algorithm digest.Algorithm
	Outcome   Outcome
	// Record is set only when Outcome is OutcomeFound.
	Record    *catalog.Record
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Found reports whether a record matched.
func (r Report) Found() bool {
	return r.Outcome == OutcomeFound && r.Record != nil
}

// Superseded reports whether the lookup was abandoned for a newer request.
func (r Report) Superseded() bool {
	return r.Outcome == OutcomeTransportError && errors.Is(r.Err, catalog.ErrSuperseded)
}

// Advice maps the outcome to what the user should do next.
func (r Report) Advice() Advice {
	switch r.Outcome {
	case OutcomeNotFound, OutcomeDecodeError, OutcomeEncodingError:
		return AdviceRetakePhoto
	case OutcomeTransportError:
		if r.Superseded() {
			return AdviceSuperseded
		}
		return AdviceCheckNetwork
	default:
		return AdviceNone
	}
}

// ErrorMessage returns the error text, or "" when the report carries none.
func (r Report) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// View is the serializable form of a Report.
type View struct {
	RequestID  string          `json:"request_id" yaml:"request_id"`
	Digest     string          `json:"digest,omitempty" yaml:"digest,omitempty"`
	Algorithm  string          `json:"algorithm" yaml:"algorithm"`
	Outcome    Outcome         `json:"outcome" yaml:"outcome"`
	Record     *catalog.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Advice     Advice          `json:"advice,omitempty" yaml:"advice,omitempty"`
	Message    string          `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
}

// View converts the report for JSON or YAML output.
func (r Report) View() View {
	advice := r.Advice()
	return View{
		RequestID:  r.RequestID,
		Digest:     r.Digest.String(),
		Algorithm:  string(r.Algorithm),
		Outcome:    r.Outcome,
		Record:     r.Record,
		Error:      r.ErrorMessage(),
		Advice:     advice,
		Message:    advice.Message(),
		StartedAt:  r.StartedAt.UTC(),
		DurationMS: r.Duration.Milliseconds(),
	}
}
