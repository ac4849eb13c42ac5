package resource

import (
	"context"
	"fmt"
	"sync/atomic"
)

type State int32

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Resource memoizes the outcome of a single asynchronous operation.
//
// The operation is started when the Resource is created and settles the
// Resource exactly once. Reads never block; see Read.
type Resource[T any] struct {
	state atomic.Int32
	done  chan struct{}

	// Written once before done is closed
	value T
	err   error
}

// New starts operation in a new goroutine and returns a pending Resource
func New[T any](operation func() (T, error)) *Resource[T] {
	r := &Resource[T]{
		done: make(chan struct{}),
	}

	go r.run(operation)

	return r
}

// NewFulfilled returns a Resource that is already settled with value
func NewFulfilled[T any](value T) *Resource[T] {
	r := &Resource[T]{
		done:  make(chan struct{}),
		value: value,
	}
	r.state.Store(int32(Fulfilled))
	close(r.done)
	return r
}

// NewRejected returns a Resource that is already settled with err
func NewRejected[T any](err error) *Resource[T] {
	if err == nil {
		err = ErrNilRejection
	}
	r := &Resource[T]{
		done: make(chan struct{}),
		err:  err,
	}
	r.state.Store(int32(Rejected))
	close(r.done)
	return r
}

func (r *Resource[T]) run(operation func() (T, error)) {
	var value T
	var err error

	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%w: %v", ErrOperationPanicked, recovered)
			}
		}()
		value, err = operation()
	}()

	if err != nil {
		r.err = err
		r.state.Store(int32(Rejected))
	} else {
		r.value = value
		r.state.Store(int32(Fulfilled))
	}
	close(r.done)
}

func (r *Resource[T]) State() State {
	return State(r.state.Load())
}

// Read returns the current outcome of the Resource without blocking.
//
// A pending Resource yields a Result with StatusPending carrying a Handle the
// caller can wait on before calling Read again.
func (r *Resource[T]) Read() Result[T] {
	select {
	case <-r.done:
	default:
		return Result[T]{status: StatusPending, handle: Handle{done: r.done}}
	}

	if r.err != nil {
		return Result[T]{status: StatusFailed, err: r.err}
	}
	return Result[T]{status: StatusReady, value: r.value}
}

// Handle refers to the operation of a pending Resource
type Handle struct {
	done <-chan struct{}
}

// Done is closed once the operation has settled
func (h Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the operation has settled or ctx is done
func (h Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
