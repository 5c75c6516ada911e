// Package coro composes suspendable computations and drives them with a
// trampoline, so that nested evaluation never grows the Go stack.
//
// A Task is resumed repeatedly. Each resumption yields a Step: a value for
// the next stage (Next), a request to run a sub-task first (Delegate), a
// final value (Done) or an error (Fail). Run keeps the delegation chain on an explicit
// stack and feeds each finished sub-task's value into its parent.
package coro

type stepKind int

const (
	kindPause stepKind = iota
	kindNext
	kindDelegate
	kindDone
	kindFail
)

// Step is the outcome of one resumption.
type Step[T any] struct {
	kind  stepKind
	value T
	sub   Task[T]
	err   error
}

// pause yields v to a caller stepping a task by hand. Run discards pause
// markers and resumes the task with v.
func pause[T any](v T) Step[T] { return Step[T]{kind: kindPause, value: v} }

// Next hands v straight to the following stage of a Staged task.
func Next[T any](v T) Step[T] { return Step[T]{kind: kindNext, value: v} }

// Delegate asks the driver to run sub to completion and resume the caller
// with its value.
func Delegate[T any](sub Task[T]) Step[T] { return Step[T]{kind: kindDelegate, sub: sub} }

// Done completes the task with v.
func Done[T any](v T) Step[T] { return Step[T]{kind: kindDone, value: v} }

// Fail aborts the task and every task waiting on it.
func Fail[T any](err error) Step[T] { return Step[T]{kind: kindFail, err: err} }

func (s Step[T]) isPause() bool    { return s.kind == kindPause }
func (s Step[T]) IsDelegate() bool { return s.kind == kindDelegate }
func (s Step[T]) IsDone() bool     { return s.kind == kindDone }
func (s Step[T]) Value() T         { return s.value }
func (s Step[T]) Sub() Task[T]     { return s.sub }
func (s Step[T]) Err() error       { return s.err }

// Task is a resumable computation. in is the value of the sub-task the
// task last delegated to, or the value its previous step carried.
type Task[T any] interface {
	Resume(in T) Step[T]
}

// Closer is implemented by tasks that must release state when they are
// popped off the driver stack, whether they finished or were abandoned.
type Closer interface {
	Close()
}

// Func adapts a function to the Task interface.
type Func[T any] func(in T) Step[T]

func (f Func[T]) Resume(in T) Step[T] { return f(in) }

type direct[T any] struct {
	v   T
	err error
}

func (d direct[T]) Resume(T) Step[T] {
	if d.err != nil {
		return Fail[T](d.err)
	}
	return Done(d.v)
}

// Value returns an already-completed task.
func Value[T any](v T, err error) Task[T] {
	return direct[T]{v: v, err: err}
}

// Run drives t to completion and returns its value. When any task on the
// stack fails, every pending frame is closed from the top down and the error
// is returned.
func Run[T any](t Task[T]) (T, error) {
	var zero T
	if d, ok := t.(direct[T]); ok {
		return d.v, d.err
	}
	stack := []Task[T]{t}
	in := zero
	for {
		top := stack[len(stack)-1]
		step := top.Resume(in)
		switch step.kind {
		case kindPause, kindNext:
			in = step.value
		case kindDelegate:
			if d, ok := step.sub.(direct[T]); ok {
				if d.err != nil {
					unwind(stack)
					return zero, d.err
				}
				in = d.v
				continue
			}
			stack = append(stack, step.sub)
			in = zero
		case kindDone:
			closeTask(top)
			stack[len(stack)-1] = nil
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return step.value, nil
			}
			in = step.value
		case kindFail:
			unwind(stack)
			return zero, step.err
		}
	}
}

func unwind[T any](stack []Task[T]) {
	for i := len(stack) - 1; i >= 0; i-- {
		closeTask(stack[i])
	}
}

func closeTask[T any](t Task[T]) {
	if c, ok := t.(Closer); ok {
		c.Close()
	}
}
