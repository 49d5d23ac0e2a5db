// Package logs reads back the JSON log file written by the logging package.
//
// It returns the last N lines with bounded memory, follows the file for new
// lines until the caller's context ends, and filters records by level,
// component, or request correlation ID so `oceaneye logs` can show the trail
// of a single identification.
package logs
