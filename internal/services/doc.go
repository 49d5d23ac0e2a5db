// Package services defines shared utilities used by the identification
// pipeline and its front-ends.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs and request sources (cli, api)
//     for logging and history.
//   - Structured error markers plus the Wrap helper so front-ends can tell
//     configuration problems from transient upstream failures.
package services
