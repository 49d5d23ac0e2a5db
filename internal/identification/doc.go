// Package identification turns a photo into one settled Report.
//
// The Identifier optionally canonicalizes the image, hashes it, resolves the
// digest against a freshly fetched record collection, and classifies the
// result into exactly one outcome: found, not_found, encoding_error,
// decode_error, or transport_error. Every call yields a Report, and the
// asynchronous variant invokes its callback exactly once. Reports carry a
// request ID that is also stamped on the context so log lines correlate.
//
// Front-ends (the CLI and the local API) depend only on this package's
// contracts, never on hashing or fetching directly.
package identification
