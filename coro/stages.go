package coro

// Staged runs a fixed sequence of stages. Each stage receives the value
// produced by the previous one: either passed directly with Next or
// computed by a delegated sub-task.
type Staged[T any] struct {
	stages  []func(T) Step[T]
	i       int
	finally func()
	closed  bool
}

// Stages builds a staged task.
func Stages[T any](stages ...func(T) Step[T]) *Staged[T] {
	return &Staged[T]{stages: stages}
}

// Finally registers fn to run exactly once when the task is popped from the
// driver stack, on success or failure.
func (s *Staged[T]) Finally(fn func()) *Staged[T] {
	s.finally = fn
	return s
}

func (s *Staged[T]) Resume(in T) Step[T] {
	if s.i >= len(s.stages) {
		return Done(in)
	}
	stage := s.stages[s.i]
	s.i++
	step := stage(in)
	if step.kind == kindNext && s.i >= len(s.stages) {
		return Done(step.value)
	}
	return step
}

func (s *Staged[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.finally != nil {
		s.finally()
	}
}
