package queue

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a uid does not match any queue item.
var ErrNotFound = errors.New("item not found in queue")

// ErrIllegalOperation is returned for operations that target the current
// item through a path reserved for upcoming items (e.g. removing what is
// playing, which is a transport concern, not a queue concern).
var ErrIllegalOperation = errors.New("operation not allowed on the current item")

// InvalidPositionError reports an insert position outside the valid range
// of the destination segment.
type InvalidPositionError struct {
	Position int
	Max      int
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid insert position %d (valid 0..%d)", e.Position, e.Max)
}

// InvalidMoveError reports a move whose indices are out of range, equal,
// or touching the current item.
type InvalidMoveError struct {
	From   int
	To     int
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %d -> %d: %s", e.From, e.To, e.Reason)
}

// OutOfRangeError reports an index translation outside the queue bounds.
type OutOfRangeError struct {
	Index int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range (max %d)", e.Index, e.Max)
}
