package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"oceaneye/internal/digest"
	"oceaneye/internal/logging"
)

// Status classifies a settled lookup that did not fail.
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
)

// Result is the outcome of a successful lookup.
type Result struct {
	Status Status
	Record Record
}

// Found reports whether a record matched.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Resolver maps digests to records using a fresh collection per lookup.
// At most one lookup is outstanding per Resolver; starting one cancels the
// previous one, which then settles with ErrSuperseded.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	seq    uint64
	active int
}

// NewResolver wraps fetcher.
func NewResolver(fetcher Fetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// InFlight reports whether a lookup is currently running.
func (r *Resolver) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active > 0
}

// Resolve fetches the collection and matches d against it.
func (r *Resolver) Resolve(ctx context.Context, d digest.Digest) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.fetcher == nil {
		return Result{}, &TransportError{Err: errors.New("no catalog fetcher configured")}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	id := r.begin(cancel)
	defer r.finish(id, cancel)

	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldDigest, d.String()))

	collection, err := r.fetcher.Fetch(ctx)
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		logger.Debug("lookup superseded", logging.String(logging.FieldEventType, "lookup_superseded"))
		return Result{}, &TransportError{Err: ErrSuperseded}
	}
	if err != nil {
		return Result{}, err
	}

	record, ok := collection.Match(d.String())
	if !ok {
		logger.Debug("no record matched", logging.Int("records", collection.Len()))
		return Result{Status: StatusNotFound}, nil
	}
	logger.Debug("record matched", logging.String("record_key", record.Key), logging.String("record_name", record.Name))
	return Result{Status: StatusFound, Record: record}, nil
}

func (r *Resolver) begin(cancel context.CancelCauseFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel(ErrSuperseded)
	}
	r.seq++
	r.cancel = cancel
	r.active++
	return r.seq
}

func (r *Resolver) finish(id uint64, cancel context.CancelCauseFunc) {
	r.mu.Lock()
	r.active--
	if r.seq == id {
		r.cancel = nil
	}
	r.mu.Unlock()
	cancel(nil)
}
