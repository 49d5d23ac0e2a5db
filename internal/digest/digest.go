package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a supported 256-bit hash function.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	SHA3_256   Algorithm = "sha3-256"
	BLAKE2b256 Algorithm = "blake2b-256"
)

// Default is the algorithm used when none is configured.
const Default = SHA256

// Size is the length in characters of every hex digest produced here.
const Size = 64

// Digest is a lowercase hex-encoded 256-bit hash.
type Digest string

// String returns the hex form.
func (d Digest) String() string { return string(d) }

// Short returns the first 12 characters, for log lines and tables.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d[:12])
}

// Algorithms lists every supported algorithm in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA3_256, BLAKE2b256}
}

// ParseAlgorithm resolves a configured algorithm name. Empty selects Default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256", "sha-256", "sha2-256":
		return SHA256, nil
	case "sha3-256", "sha3":
		return SHA3_256, nil
	case "blake2b-256", "blake2b":
		return BLAKE2b256, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm %q", name)
	}
}

// Hasher computes digests with a fixed algorithm. It holds no mutable state
// and is safe for concurrent use.
type Hasher struct {
	alg Algorithm
}

// New returns a Hasher for alg.
func New(alg Algorithm) (*Hasher, error) {
	parsed, err := ParseAlgorithm(string(alg))
	if err != nil {
		return nil, err
	}
	return &Hasher{alg: parsed}, nil
}

// Algorithm reports the hasher's algorithm.
func (h *Hasher) Algorithm() Algorithm {
	if h == nil || h.alg == "" {
		return Default
	}
	return h.alg
}

// Compute hashes data. Empty input fails with an *EncodingError.
func (h *Hasher) Compute(data []byte) (Digest, error) {
	if len(data) == 0 {
		return "", &EncodingError{Reason: "image is empty", Err: ErrEmptyInput}
	}
	hh, err := h.newHash()
	if err != nil {
		return "", err
	}
	hh.Write(data)
	return Digest(hex.EncodeToString(hh.Sum(nil))), nil
}

// ComputeReader hashes everything read from r in a single pass. A read
// failure or an empty stream fails with an *EncodingError.
func (h *Hasher) ComputeReader(ctx context.Context, r io.Reader) (Digest, error) {
	if r == nil {
		return "", &EncodingError{Reason: "no image reader", Err: ErrEmptyInput}
	}
	hh, err := h.newHash()
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := io.Copy(hh, &contextReader{ctx: ctx, r: r})
	if err != nil {
		return "", &EncodingError{Reason: "read image", Err: err}
	}
	if n == 0 {
		return "", &EncodingError{Reason: "image is empty", Err: ErrEmptyInput}
	}
	return Digest(hex.EncodeToString(hh.Sum(nil))), nil
}

func (h *Hasher) newHash() (hash.Hash, error) {
	switch h.Algorithm() {
	case SHA256:
		return sha256.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case BLAKE2b256:
		hh, err := blake2b.New256(nil)
		if err != nil {
			return nil, &EncodingError{Reason: "init blake2b", Err: err}
		}
		return hh, nil
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unsupported algorithm %q", h.alg)}
	}
}

var defaultHasher = &Hasher{alg: Default}

// Compute hashes data with SHA-256.
func Compute(data []byte) (Digest, error) {
	return defaultHasher.Compute(data)
}

// Valid reports whether s has the shape of a digest produced by this package.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// IsEmptyInput reports whether err stems from hashing zero bytes.
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}
