package mediaart

import (
	"errors"
	"fmt"
)

// ErrNoTitle is returned when an operation requires a title and none was
// given.
var ErrNoTitle = errors.New("no title specified")

// ErrNoIdentity is returned when neither artist nor title is known so no
// cache identity can be derived.
var ErrNoIdentity = errors.New("no artist or title to derive a cache identity from")

// ErrNotFound is returned when a file needed by an operation does not
// exist or cannot be read.
var ErrNotFound = errors.New("resource not found")

// ErrNoCandidate is returned by the directory search when nothing in the
// media file's directory looks like artwork for it.
var ErrNoCandidate = errors.New("no candidate artwork found")

// ErrCancelled is returned when a request is made against a Processor
// which has already been stopped.
var ErrCancelled = errors.New("process request on cancelled Processor")

// FSError describes a failed filesystem operation. It carries the
// operation name and path together with the underlying OS error.
type FSError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *FSError) Unwrap() error {
	return e.Err
}
