// Package domain holds the pure task-tracking types shared by every layer:
// application paths, task identifiers, tasks and their status reports.
// Nothing in this package touches storage or transport.
package domain

import (
	"fmt"
	"strings"
)

// AppPath identifies an application as a hierarchical, slash-segmented
// path such as "/prod/api/web". Paths compare as plain strings, so a
// sorted path list has a stable, deterministic order.
type AppPath string

// ParseAppPath validates a raw path and returns it in canonical form:
// a leading slash, no trailing slash, no empty segments. Segments may
// contain lowercase letters, digits, dots and dashes. Underscores are
// rejected because the task identifier codec flattens slashes to
// underscores; allowing them in segments would make parsing ambiguous.
func ParseAppPath(raw string) (AppPath, error) {
	if !strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("%w: %q must start with /", ErrInvalidAppPath, raw)
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: %q has no segments", ErrInvalidAppPath, raw)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidAppPath, raw)
		}
		for _, r := range seg {
			if !validPathRune(r) {
				return "", fmt.Errorf("%w: %q contains %q", ErrInvalidAppPath, raw, r)
			}
		}
	}
	return AppPath("/" + trimmed), nil
}

func validPathRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-':
		return true
	}
	return false
}

// String returns the canonical slash form.
func (p AppPath) String() string { return string(p) }

// Segments splits the path into its hierarchy levels.
func (p AppPath) Segments() []string {
	return strings.Split(strings.Trim(string(p), "/"), "/")
}
