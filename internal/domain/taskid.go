package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Task identifiers embed the owning application path so any task named in
// a status report can be routed to its application without a lookup.
// Layout: the path with slashes flattened to underscores, a single dot,
// then a UUID. "/prod/api/web" mints ids like
// "prod_api_web.0b1d0c3e-5f4a-4c2b-9e8d-7a6f5e4d3c2b".

// NewTaskID mints a unique identifier for a task of the given application.
func NewTaskID(app AppPath) string {
	return safePath(app) + "." + uuid.NewString()
}

// TaskIDPrefix returns the prefix every identifier minted for app shares,
// dot included. The dot terminator keeps a scan for "/prod/api" from
// matching "/prod/api-v2" or any deeper path. Dotted segments can still
// collide ("/v2" against "/v2.1/api"), so loaders verify ownership by
// parsing each identifier they scan up.
func TaskIDPrefix(app AppPath) string {
	return safePath(app) + "."
}

// ParseTaskID recovers the owning application path from a task identifier.
// Identifiers that do not follow the safe-path layout fail with
// ErrInvalidTaskID.
func ParseTaskID(id string) (AppPath, error) {
	dot := strings.LastIndexByte(id, '.')
	if dot <= 0 || dot == len(id)-1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskID, id)
	}
	if err := uuid.Validate(id[dot+1:]); err != nil {
		return "", fmt.Errorf("%w: %q has no uuid suffix", ErrInvalidTaskID, id)
	}
	app, err := ParseAppPath(unsafePath(id[:dot]))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskID, id)
	}
	return app, nil
}

// safePath flattens an application path into the store-safe prefix used
// inside task identifiers: "/prod/api/web" becomes "prod_api_web".
func safePath(app AppPath) string {
	return strings.ReplaceAll(strings.Trim(string(app), "/"), "/", "_")
}

func unsafePath(safe string) string {
	return "/" + strings.ReplaceAll(safe, "_", "/")
}
