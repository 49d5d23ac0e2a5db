// Package catalog fetches the remote fish record collection and resolves
// image digests against it.
//
// The collection is a flat JSON object mapping arbitrary keys to records that
// carry a hash plus species metadata. Client performs the single HTTP GET and
// strictly decodes the body; Resolver fetches a fresh collection for every
// lookup and keeps at most one lookup outstanding, cancelling the previous one
// when a new one starts. Failures surface as *TransportError or *DecodeError so
// callers can tell a network problem from a malformed collection. A miss is a
// Result with StatusNotFound, never an error.
package catalog
