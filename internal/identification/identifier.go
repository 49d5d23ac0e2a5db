package identification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"oceaneye/internal/catalog"
	"oceaneye/internal/digest"
	"oceaneye/internal/logging"
	"oceaneye/internal/services"
)

// Hasher derives digests from image bytes.
type Hasher interface {
	Compute(data []byte) (digest.Digest, error)
	Algorithm() digest.Algorithm
}

// Resolver maps a digest to a catalog record.
type Resolver interface {
	Resolve(ctx context.Context, d digest.Digest) (catalog.Result, error)
}

// Recorder persists settled reports.
type Recorder interface {
	Record(ctx context.Context, report Report) error
}

// Canonicalizer rewrites image bytes before hashing.
type Canonicalizer func(data []byte) ([]byte, error)

// Identifier wires hashing and resolution into settled reports.
type Identifier struct {
	hasher        Hasher
	resolver      Resolver
	canonicalizer Canonicalizer
	recorder      Recorder
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures an Identifier.
type Option func(*Identifier)

// WithCanonicalizer re-encodes images before hashing.
func WithCanonicalizer(fn Canonicalizer) Option {
	return func(i *Identifier) {
		i.canonicalizer = fn
	}
}

// WithRecorder appends every settled report to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(i *Identifier) {
		i.recorder = recorder
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Identifier) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New builds an Identifier.
func New(hasher Hasher, resolver Resolver, opts ...Option) (*Identifier, error) {
	if hasher == nil {
		return nil, errors.New("identification: hasher required")
	}
	if resolver == nil {
		return nil, errors.New("identification: resolver required")
	}
	i := &Identifier{
		hasher:   hasher,
		resolver: resolver,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.NewComponentLogger(i.logger, "identifier")
	return i, nil
}

// Algorithm returns the hash algorithm in use.
func (i *Identifier) Algorithm() digest.Algorithm {
	return i.hasher.Algorithm()
}

// InFlight reports whether the resolver has a lookup running, when it
// exposes that state.
func (i *Identifier) InFlight() bool {
	if tracker, ok := i.resolver.(interface{ InFlight() bool }); ok {
		return tracker.InFlight()
	}
	return false
}

// Identify hashes image and resolves the digest.
func (i *Identifier) Identify(ctx context.Context, image []byte) Report {
	ctx, report := i.begin(ctx)

	data := image
	if i.canonicalizer != nil {
		canonical, err := i.canonicalizer(image)
		if err != nil {
			report.Err = &digest.EncodingError{Reason: "canonicalize image", Err: err}
			return i.settle(ctx, report)
		}
		data = canonical
	}

	d, err := i.hasher.Compute(data)
	if err != nil {
		report.Err = err
		return i.settle(ctx, report)
	}
	report.Digest = d
	return i.resolve(ctx, report)
}

// IdentifyDigest resolves an already computed digest.
func (i *Identifier) IdentifyDigest(ctx context.Context, d digest.Digest) Report {
	ctx, report := i.begin(ctx)
	report.Digest = d
	return i.resolve(ctx, report)
}

// Reject settles a request whose photo never reached the hasher, such as an
// upload refused at the transport. err should describe the refusal; a nil err
// is reported as an encoding error.
func (i *Identifier) Reject(ctx context.Context, err error) Report {
	ctx, report := i.begin(ctx)
	if err == nil {
		err = &digest.EncodingError{Reason: "photo rejected"}
	}
	report.Err = err
	return i.settle(ctx, report)
}

// IdentifyAsync runs Identify on its own goroutine and invokes done exactly
// once with the settled report.
func (i *Identifier) IdentifyAsync(ctx context.Context, image []byte, done func(Report)) {
	go func() {
		report := i.Identify(ctx, image)
		if done != nil {
			done(report)
		}
	}()
}

func (i *Identifier) begin(ctx context.Context) (context.Context, Report) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx, Report{
		RequestID: requestID,
		Algorithm: i.hasher.Algorithm(),
		StartedAt: i.now(),
	}
}

func (i *Identifier) resolve(ctx context.Context, report Report) Report {
	result, err := i.resolver.Resolve(ctx, report.Digest)
	if err != nil {
		report.Err = err
		return i.settle(ctx, report)
	}
	if result.Found() {
		record := result.Record
		report.Record = &record
		report.Outcome = OutcomeFound
	} else {
		report.Outcome = OutcomeNotFound
	}
	return i.settle(ctx, report)
}

func (i *Identifier) settle(ctx context.Context, report Report) Report {
	if report.Err != nil {
		report.Outcome = Classify(report.Err)
		report.Record = nil
	}
	report.Duration = i.now().Sub(report.StartedAt)

	logger := logging.WithContext(ctx, i.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "identification_settled"),
		logging.String(logging.FieldOutcome, string(report.Outcome)),
		logging.String(logging.FieldDigest, report.Digest.String()),
		logging.String(logging.FieldAlgorithm, string(report.Algorithm)),
		logging.Duration("duration", report.Duration),
	}
	if report.Record != nil {
		attrs = append(attrs, logging.String("record_name", report.Record.Name), logging.String("record_key", report.Record.Key))
	}
	switch {
	case report.Superseded():
		logger.Info("identification superseded", logging.Args(append(attrs, logging.Error(report.Err))...)...)
	case report.Err != nil:
		attrs = append(attrs, logging.Error(report.Err))
		if report.Outcome == OutcomeTransportError {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, "check network connection and catalog.url"))
		} else {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, report.Advice().Detail()))
		}
		logging.WarnWithContext(logger, "identification failed", "identification_settled",
			append(attrs, logging.String(logging.FieldImpact, "no species shown for this photo"))...)
	default:
		logger.Info("identification settled", logging.Args(attrs...)...)
	}

	if i.recorder != nil {
		if err := i.recorder.Record(ctx, report); err != nil {
			logging.WarnWithContext(logger, "history append failed", "history_append",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.path permissions or disable history"),
				logging.String(logging.FieldImpact, "identification not recorded in history"),
			)
		}
	}
	return report
}
