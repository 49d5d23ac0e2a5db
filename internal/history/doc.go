// Package history persists settled identifications in SQLite.
//
// The log is write-mostly audit data for the CLI and API: lookups never read
// it, so a past match is never reused for a new photo. Schema changes ship as
// embedded SQL migrations applied on Open.
package history
