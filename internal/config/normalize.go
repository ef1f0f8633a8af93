package config

import (
	"regexp"
	"strings"
)

// DefaultSessionName is used when a user-provided session name
// normalizes to nothing.
const DefaultSessionName = "default"

var (
	validNameRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	invalidChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	edgeDashes   = regexp.MustCompile(`^-+|-+$`)
)

// NormalizeSessionName turns a user-provided session name (CLI flag,
// API field) into a stable identifier: lowercase, [a-z0-9_-], max 64
// chars, no leading or trailing dashes.
func NormalizeSessionName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultSessionName
	}

	lower := strings.ToLower(trimmed)
	if validNameRe.MatchString(lower) {
		return lower
	}

	result := invalidChars.ReplaceAllString(lower, "-")
	result = edgeDashes.ReplaceAllString(result, "")
	if len(result) > 64 {
		result = result[:64]
	}
	if result == "" {
		return DefaultSessionName
	}
	return result
}
