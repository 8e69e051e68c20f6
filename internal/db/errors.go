package db

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup whose subject has no rows. Callers distinguish
// it from transport or query failures with errors.Is.
var ErrNotFound = errors.New("not found")

// PersistenceError reports a failed write after a computation already
// succeeded. Committed is how many rows of the batch landed before the
// failure; callers that received computed values alongside this error can
// still use them.
type PersistenceError struct {
	Entity    string
	Committed int
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %d rows committed before failure: %v", e.Entity, e.Committed, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
