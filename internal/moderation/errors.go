package moderation

import "errors"

// Sentinel errors surfaced to callers. Storage failures are wrapped with %w
// and carry rollback guarantees; already-resolved queue entries are not
// errors at all (see Resolution.NoOp).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
