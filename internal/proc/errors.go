package proc

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when the candidate outlived its wall time limit and
// its process tree was killed.
var ErrTimeout = errors.New("wall time limit exceeded")

// ExitError is returned when the candidate terminated on its own with a
// non-zero status or by a signal.
type ExitError struct {
	Code   int
	Signal *int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Signal != nil {
		return fmt.Sprintf("process killed by signal %d", *e.Signal)
	}
	return fmt.Sprintf("process exited with code %d", e.Code)
}
