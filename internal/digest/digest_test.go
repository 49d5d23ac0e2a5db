package digest_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	cid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"oceaneye/internal/digest"
)

func TestComputeKnownVectors(t *testing.T) {
	cases := []struct {
		alg  digest.Algorithm
		want digest.Digest
	}{
		{digest.SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{digest.SHA3_256, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{digest.BLAKE2b256, "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"},
	}
	for _, tc := range cases {
		t.Run(string(tc.alg), func(t *testing.T) {
			h, err := digest.New(tc.alg)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			got, err := h.Compute([]byte("abc"))
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected digest: got %s want %s", got, tc.want)
			}
			if !digest.Valid(string(got)) {
				t.Fatalf("expected %s to be a valid digest", got)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	payload := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 1024)
	first, err := digest.Compute(payload)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	second, err := digest.Compute(append([]byte(nil), payload...))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if first != second {
		t.Fatalf("identical bytes produced different digests: %s vs %s", first, second)
	}
	if len(first) != digest.Size || strings.ToLower(string(first)) != string(first) {
		t.Fatalf("digest %q is not 64 lowercase hex chars", first)
	}
}

func TestComputeSingleByteFlipsChangeDigest(t *testing.T) {
	base := []byte("\x89PNG\r\n\x1a\n fish photo payload")
	baseDigest, err := digest.Compute(base)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	seen := map[digest.Digest]int{baseDigest: -1}
	for i := range base {
		variant := append([]byte(nil), base...)
		variant[i] ^= 0x01
		got, err := digest.Compute(variant)
		if err != nil {
			t.Fatalf("Compute returned error for variant %d: %v", i, err)
		}
		if prev, dup := seen[got]; dup {
			t.Fatalf("variant %d collided with %d: %s", i, prev, got)
		}
		seen[got] = i
	}
}

func TestComputeEmptyInputIsEncodingError(t *testing.T) {
	for _, input := range [][]byte{nil, {}} {
		got, err := digest.Compute(input)
		if err == nil {
			t.Fatalf("expected error for empty input, got digest %q", got)
		}
		if got != "" {
			t.Fatalf("expected empty digest on error, got %q", got)
		}
		var encErr *digest.EncodingError
		if !errors.As(err, &encErr) {
			t.Fatalf("expected *EncodingError, got %T", err)
		}
		if !digest.IsEmptyInput(err) {
			t.Fatalf("expected ErrEmptyInput marker, got %v", err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestComputeReader(t *testing.T) {
	h, err := digest.New(digest.SHA256)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	got, err := h.ComputeReader(context.Background(), strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("ComputeReader returned error: %v", err)
	}
	want, _ := digest.Compute([]byte("abc"))
	if got != want {
		t.Fatalf("reader digest %s differs from byte digest %s", got, want)
	}

	var encErr *digest.EncodingError
	if _, err := h.ComputeReader(context.Background(), failingReader{}); !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError for failing reader, got %v", err)
	}
	if _, err := h.ComputeReader(context.Background(), strings.NewReader("")); !digest.IsEmptyInput(err) {
		t.Fatalf("expected empty input error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.ComputeReader(ctx, strings.NewReader("abc")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]digest.Algorithm{
		"":            digest.SHA256,
		"SHA256":      digest.SHA256,
		"sha-256":     digest.SHA256,
		"sha3":        digest.SHA3_256,
		"blake2b-256": digest.BLAKE2b256,
	}
	for input, want := range cases {
		got, err := digest.ParseAlgorithm(input)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseAlgorithm(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := digest.ParseAlgorithm("md5"); err == nil {
		t.Fatal("expected md5 to be rejected")
	}
	if _, err := digest.New("crc32"); err == nil {
		t.Fatal("expected New to reject unsupported algorithm")
	}
}

func TestParse(t *testing.T) {
	const hexDigest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	cases := []struct {
		name  string
		input string
		want  digest.Digest
		ok    bool
	}{
		{"bare", hexDigest, hexDigest, true},
		{"uppercase", strings.ToUpper(hexDigest), hexDigest, true},
		{"oci", "sha256:" + hexDigest, hexDigest, true},
		{"padded", "  " + hexDigest + "\n", hexDigest, true},
		{"short", "abc123", "", false},
		{"non-hex", strings.Repeat("z", 64), "", false},
		{"wrong-prefix", "sha512:" + hexDigest, "", false},
		{"empty", "   ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := digest.Parse(tc.input)
			if tc.ok {
				if err != nil {
					t.Fatalf("Parse returned error: %v", err)
				}
				if got != tc.want {
					t.Fatalf("Parse = %q, want %q", got, tc.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error, got %q", got)
			}
		})
	}
}

func TestOCI(t *testing.T) {
	d := digest.Digest("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if got := digest.OCI(digest.SHA256, d); got != "sha256:"+string(d) {
		t.Fatalf("unexpected OCI form %q", got)
	}
	if got := digest.OCI(digest.SHA3_256, d); !strings.HasPrefix(got, "sha3-256:") {
		t.Fatalf("unexpected OCI form %q", got)
	}
}

func TestContentIDRoundTrip(t *testing.T) {
	for _, alg := range digest.Algorithms() {
		h, err := digest.New(alg)
		if err != nil {
			t.Fatalf("New(%s): %v", alg, err)
		}
		d, err := h.Compute([]byte("clownfish"))
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		id, err := digest.ContentID(alg, d)
		if err != nil {
			t.Fatalf("ContentID(%s): %v", alg, err)
		}
		parsed, err := cid.Decode(id)
		if err != nil {
			t.Fatalf("cid.Decode(%q): %v", id, err)
		}
		if parsed.Prefix().Codec != cid.Raw {
			t.Fatalf("expected raw codec, got %d", parsed.Prefix().Codec)
		}
		decoded, err := multihash.Decode(parsed.Hash())
		if err != nil {
			t.Fatalf("multihash.Decode: %v", err)
		}
		if decoded.Length != digest.Size/2 {
			t.Fatalf("unexpected multihash length %d", decoded.Length)
		}
	}

	sha, _ := digest.Compute([]byte("abc"))
	id, err := digest.ContentID(digest.SHA256, sha)
	if err != nil {
		t.Fatalf("ContentID: %v", err)
	}
	if !strings.HasPrefix(id, "bafkrei") {
		t.Fatalf("expected raw sha2-256 CIDv1 prefix, got %q", id)
	}
	if _, err := digest.ContentID(digest.SHA256, "abc"); err == nil {
		t.Fatal("expected error for malformed digest")
	}
}
