package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStoreResolveFallsBackToGlobal(t *testing.T) {
	global := NewPlainObject()
	root := NewGlobalStore(global)
	root.Declare("g", NewNumber(1))
	fn := Push(root, map[string]*Value{"x": NewNumber(2)})
	inner := Push(fn, nil)

	if inner.Resolve("x") != fn {
		t.Errorf("x should resolve to the function store")
	}
	if inner.Resolve("g") != root {
		t.Errorf("g should resolve to the global store")
	}
	if inner.Resolve("missing") != root {
		t.Errorf("unbound names should resolve to the global store")
	}
	if err := inner.Assign("leak", True); err != nil {
		t.Fatal(err)
	}
	if !global.HasOwnProperty("leak") {
		t.Errorf("assignment to an unbound name should create a global")
	}
	v, err := inner.Lookup("nope")
	if err != nil || v != Undefined {
		t.Errorf("unbound read = %v, %v", v, err)
	}
}

func TestStoreDeclareIsIdempotent(t *testing.T) {
	s := Push(NewGlobalStore(NewPlainObject()), nil)
	if !s.Declare("a", NewNumber(1)) {
		t.Fatalf("first declare should create the binding")
	}
	if s.Declare("a", Undefined) {
		t.Fatalf("second declare should not replace the binding")
	}
	if v, _ := s.Lookup("a"); v.Number != 1 {
		t.Errorf("a = %v", v)
	}
}

func TestPromiseReactionsRunAsMicrotasks(t *testing.T) {
	loop := NewLoop()
	var trace []string
	p := NewPromise(loop)
	p.Then(func(v *Value) (*Value, error) {
		trace = append(trace, "then:"+v.ToString())
		return NewNumber(v.Number * 2), nil
	}, nil).Then(func(v *Value) (*Value, error) {
		trace = append(trace, "chained:"+v.ToString())
		return nil, errors.New("TypeError: boom")
	}, nil).Then(nil, func(r *Value) (*Value, error) {
		trace = append(trace, "caught:"+Describe(r))
		return Undefined, nil
	})
	p.Resolve(NewNumber(21))
	trace = append(trace, "sync")
	if err := loop.RunMicrotasks(); err != nil {
		t.Fatal(err)
	}
	want := []string{"sync", "then:21", "chained:42", "caught:TypeError: boom"}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestPromiseAdoptsPromise(t *testing.T) {
	loop := NewLoop()
	inner := NewPromise(loop)
	outer := NewPromise(loop)
	outer.Resolve(inner.Value())
	inner.Reject(NewString("no"))
	if err := loop.RunMicrotasks(); err != nil {
		t.Fatal(err)
	}
	if outer.State() != PromiseRejected || outer.Result().Str != "no" {
		t.Errorf("outer = %v %v", outer.State(), outer.Result())
	}
	outer.Resolve(NewNumber(1))
	if outer.State() != PromiseRejected {
		t.Errorf("settled promises must not change state")
	}
}

func TestLoopTimersRunInDeadlineOrder(t *testing.T) {
	loop := NewLoop()
	var order []int
	add := func(n int) func() error {
		return func() error {
			order = append(order, n)
			return nil
		}
	}
	loop.SetTimer(20*time.Millisecond, false, add(3))
	loop.SetTimer(0, false, add(1))
	loop.SetTimer(0, false, add(2))
	cancelled := loop.SetTimer(5*time.Millisecond, false, add(99))
	loop.ClearTimer(cancelled)
	loop.Enqueue(add(0))

	if err := loop.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if loop.Pending() {
		t.Errorf("loop should be empty after draining")
	}
}

func TestLoopIntervalUntilCleared(t *testing.T) {
	loop := NewLoop()
	count := 0
	var id int
	id = loop.SetTimer(time.Millisecond, true, func() error {
		count++
		if count == 3 {
			loop.ClearTimer(id)
		}
		return nil
	})
	if err := loop.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("interval fired %d times", count)
	}
}

func TestLoopDrainHonoursContext(t *testing.T) {
	loop := NewLoop()
	loop.SetTimer(time.Hour, false, func() error { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := loop.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
