package core

import (
	"fmt"

	"github.com/git-pkgs/versioncheck/client"
	"go.trai.ch/zerr"
)

// ErrUnknownSource is returned by New for a name no source registered.
var ErrUnknownSource = zerr.New("unknown source")

// Error types shared with the HTTP client.
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

// ErrNotFound is returned when a package or tag does not exist.
var ErrNotFound = client.ErrNotFound

// LookupError describes a failed lookup. It is carried inside a Result, never
// returned directly to report code.
type LookupError struct {
	Source string
	Name   string
	Tag    string // empty for installed-version lookups
	Err    error
}

func (e *LookupError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s@%s: %v", e.Source, e.Name, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s: installed %s: %v", e.Source, e.Name, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
