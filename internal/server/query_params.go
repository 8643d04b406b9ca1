package server

import (
	"strconv"
	"strings"
)

// parsePositiveInt returns 0 for empty or malformed values; callers
// normalize zero to their defaults.
func parsePositiveInt(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return 0
	}
	return parsed
}
