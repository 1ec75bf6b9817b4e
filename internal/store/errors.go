package store

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the named artifact is absent from storage.
// Check with errors.Is; callers distinguish this from corruption because a
// missing baseline is often a recoverable condition (capture a new one).
var ErrNotFound = errors.New("artifact not found")

// CorruptArtifactError indicates a stored artifact's structure is malformed:
// bad header, unparseable row line, inconsistent column sets, or a
// self-referential parent link.
type CorruptArtifactError struct {
	Name   string
	Line   int // 1-based line number, 0 when not line-specific
	Reason string
	Err    error // underlying parse error, optional
}

func (e *CorruptArtifactError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("corrupt artifact %q, line %d: %s", e.Name, e.Line, e.Reason)
	}
	return fmt.Sprintf("corrupt artifact %q: %s", e.Name, e.Reason)
}

func (e *CorruptArtifactError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is a CorruptArtifactError.
// Uses errors.As to handle wrapped errors.
func IsCorrupt(err error) bool {
	var ce *CorruptArtifactError
	return errors.As(err, &ce)
}
