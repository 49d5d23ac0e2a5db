// Package main hosts the OceanEye CLI entrypoint and command graph.
//
// The Cobra-based command tree identifies fish photos, hashes images, resolves
// digests, inspects the remote catalog and local history, and runs the local
// API server. It centralizes configuration resolution and logger setup so
// subcommands focus on output instead of wiring. New behaviour belongs in the
// internal packages first and is surfaced here through commands or flags.
package main
