package digest

import (
	"encoding/hex"
	"fmt"
	"strings"

	cid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	godigest "github.com/opencontainers/go-digest"
)

// Parse normalizes a digest typed by a person. It accepts bare hex or the
// OCI "sha256:<hex>" form and returns the lowercase hex.
func Parse(value string) (Digest, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("digest must not be empty")
	}
	if strings.Contains(trimmed, ":") {
		parsed, err := godigest.Parse(strings.ToLower(trimmed))
		if err != nil {
			return "", fmt.Errorf("parse digest %q: %w", value, err)
		}
		if parsed.Algorithm() != godigest.SHA256 {
			return "", fmt.Errorf("digest %q: only sha256 prefixes are supported", value)
		}
		return Digest(parsed.Encoded()), nil
	}
	lowered := strings.ToLower(trimmed)
	if !Valid(lowered) {
		return "", fmt.Errorf("digest %q: want %d hex characters", value, Size)
	}
	return Digest(lowered), nil
}

// OCI renders d in "algorithm:hex" form. Only SHA-256 has a registered OCI
// name; other algorithms use their own name as the prefix.
func OCI(alg Algorithm, d Digest) string {
	if alg == SHA256 || alg == "" {
		return godigest.NewDigestFromEncoded(godigest.SHA256, string(d)).String()
	}
	return string(alg) + ":" + string(d)
}

// ContentID renders a CIDv1 (raw codec) that wraps d in a multihash.
func ContentID(alg Algorithm, d Digest) (string, error) {
	raw, err := hex.DecodeString(string(d))
	if err != nil {
		return "", fmt.Errorf("decode digest hex: %w", err)
	}
	if len(raw) != Size/2 {
		return "", fmt.Errorf("digest has %d bytes, want %d", len(raw), Size/2)
	}
	code, err := multihashCode(alg)
	if err != nil {
		return "", err
	}
	mh, err := multihash.Encode(raw, code)
	if err != nil {
		return "", fmt.Errorf("encode multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh)).String(), nil
}

func multihashCode(alg Algorithm) (uint64, error) {
	switch alg {
	case SHA256, "":
		return multihash.SHA2_256, nil
	case SHA3_256:
		return multihash.SHA3_256, nil
	case BLAKE2b256:
		return multihash.BLAKE2B_MIN + 31, nil
	default:
		return 0, fmt.Errorf("no multihash code for %q", alg)
	}
}
