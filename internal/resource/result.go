package resource

import (
	"errors"
	"fmt"
)

var ErrOperationPanicked = errors.New("operation panicked")

var ErrNilRejection = errors.New("rejected without an error")

type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of a single Read: Ready(value), Pending(handle) or Failed(err)
type Result[T any] struct {
	status Status
	value  T
	err    error
	handle Handle
}

func (r Result[T]) Status() Status {
	return r.status
}

func (r Result[T]) Value() (T, bool) {
	return r.value, r.status == StatusReady
}

// Err returns the error the operation failed with, unwrapped
//
// Pending results have no error.
func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) Pending() (Handle, bool) {
	return r.handle, r.status == StatusPending
}
