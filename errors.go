package goldfish

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotRepository   = errors.New("not a goldfish repository")
	ErrExists          = errors.New("repository already exists")
	ErrNothingToCommit = errors.New("nothing to commit")
	ErrNothingStaged   = errors.New("nothing staged")
	ErrDirtyTree       = errors.New("working tree has uncommitted changes")
	ErrDisjointHistory = errors.New("no common ancestor")
	ErrOutsideRepo     = errors.New("path is outside repository")
	ErrNotTracked      = errors.New("path is not tracked")
	ErrAmbiguous       = errors.New("ambiguous commit id")
	ErrInvalidPath     = errors.New("path contains a newline")
)

// NotRepoError reports a failed upward search for the control dir.
type NotRepoError struct {
	Dir string
}

func (e *NotRepoError) Error() string {
	return fmt.Sprintf("%v (or any parent up to /): %s", ErrNotRepository, e.Dir)
}

func (e *NotRepoError) Is(target error) bool {
	return target == ErrNotRepository
}

// Informational reports whether err only means there was nothing to
// do.
func Informational(err error) bool {
	return errors.Is(err, ErrNothingToCommit) || errors.Is(err, ErrNothingStaged)
}
