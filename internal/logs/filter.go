package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects JSON log records. Zero fields match everything.
type Filter struct {
	// MinLevel is one of debug, info, warn, or error.
	MinLevel      string
	Component     string
	CorrelationID string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return f.MinLevel == "" && f.Component == "" && f.CorrelationID == ""
}

// Match reports whether line satisfies the filter. Lines that are not JSON
// objects only match an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if f.MinLevel != "" && levelRank(stringField(record, "level")) < levelRank(f.MinLevel) {
		return false
	}
	if f.Component != "" && !strings.EqualFold(stringField(record, "component"), f.Component) {
		return false
	}
	if f.CorrelationID != "" && stringField(record, "correlation_id") != f.CorrelationID {
		return false
	}
	return true
}

// Apply returns the lines that match.
func (f Filter) Apply(lines []string) []string {
	if f.Empty() {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}

func stringField(record map[string]any, key string) string {
	value, _ := record[key].(string)
	return value
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 0
	case "info", "":
		return 1
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}
