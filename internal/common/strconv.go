package common

import "strconv"

// AtoiDefault parses query-string integers, falling back to def on empty or
// malformed input.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
