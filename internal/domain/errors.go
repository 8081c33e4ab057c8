package domain

import "errors"

// ErrNotIdentifiable and ErrAllModelsFailed keep the exact wording the
// HTTP surface reports to clients.
var (
	ErrNotIdentifiable = errors.New("Could not identify animal")
	ErrAllModelsFailed = errors.New("All models failed")

	ErrNoPhoto        = errors.New("no photo stored for user")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnreachable    = errors.New("user unreachable")
)
