// Package daemon runs the long-lived API server process.
//
// It owns the single-instance lock (a flock file in the state directory), the
// API listener lifecycle, and the resources that must be released on shutdown
// such as the history database.
package daemon
