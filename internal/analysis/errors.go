package analysis

import "errors"

var (
	// ErrBusy is returned synchronously when an analysis is requested while
	// another one is in flight on the same assembler. Requests are rejected,
	// never queued.
	ErrBusy = errors.New("analysis already in progress")

	// ErrAborted is returned when an in-flight analysis is cancelled. An
	// aborted analysis produces no result and must not be cached.
	ErrAborted = errors.New("analysis aborted")

	// ErrAssembly is returned when the document is unavailable and no
	// analysis can be produced at all. Fatal for the call; no partial
	// result is returned.
	ErrAssembly = errors.New("document unavailable")
)
