package db

import "github.com/pkg/errors"

// Error kinds surfaced by the store.  Callers wrap these with context
// and test for them with errors.Is.
var (
	ErrNotFound    = errors.New("object not found")
	ErrCorrupt     = errors.New("corrupted object")
	ErrEmptyCommit = errors.New("commit has no tracked files")
)
