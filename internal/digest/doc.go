// Package digest derives the stable identifiers used to match photos against
// catalog records.
//
// A Digest is the lowercase hex encoding of a 256-bit cryptographic hash over
// the exact bytes supplied. Nothing is normalized here: callers that want two
// encodings of the same picture to match must canonicalize the bytes first
// (see package imaging). SHA-256 is the default algorithm; SHA3-256 and
// BLAKE2b-256 are available for catalogs built with them.
//
// Parse accepts digests typed by people (bare hex or the OCI "sha256:<hex>"
// form) and ContentID renders a CIDv1 for tooling that speaks multiformats.
package digest
