package runtime

import (
	"container/heap"
	"context"
	"time"
)

// Loop is a single-threaded event loop: a FIFO microtask queue plus timers
// ordered by deadline and then by creation order.
type Loop struct {
	jobs   []func() error
	timers timerQueue
	byID   map[int]*timer
	nextID int
	seq    uint64
	now    func() time.Time
}

type timer struct {
	id       int
	due      time.Time
	interval time.Duration
	repeat   bool
	seq      uint64
	fn       func() error
	index    int
}

func NewLoop() *Loop {
	return &Loop{byID: make(map[int]*timer), now: time.Now}
}

// Enqueue appends a microtask.
func (l *Loop) Enqueue(job func() error) {
	l.jobs = append(l.jobs, job)
}

// SetTimer schedules fn after delay and returns its id. Repeating timers
// reschedule themselves until cleared.
func (l *Loop) SetTimer(delay time.Duration, repeat bool, fn func() error) int {
	if delay < 0 {
		delay = 0
	}
	l.nextID++
	l.seq++
	t := &timer{id: l.nextID, due: l.now().Add(delay), interval: delay, repeat: repeat, seq: l.seq, fn: fn}
	heap.Push(&l.timers, t)
	l.byID[t.id] = t
	return t.id
}

// ClearTimer cancels a pending timer. Unknown ids are ignored.
func (l *Loop) ClearTimer(id int) {
	t, ok := l.byID[id]
	if !ok {
		return
	}
	delete(l.byID, id)
	heap.Remove(&l.timers, t.index)
}

// Pending reports whether any microtask or timer is queued.
func (l *Loop) Pending() bool {
	return len(l.jobs) > 0 || len(l.timers) > 0
}

// RunMicrotasks runs queued jobs, including ones they enqueue, until the
// queue is empty.
func (l *Loop) RunMicrotasks() error {
	for len(l.jobs) > 0 {
		job := l.jobs[0]
		l.jobs[0] = nil
		l.jobs = l.jobs[1:]
		if err := job(); err != nil {
			return err
		}
	}
	return nil
}

// Drain runs microtasks and timers until nothing is left. It waits for the
// next timer deadline unless ctx is done first.
func (l *Loop) Drain(ctx context.Context) error {
	for {
		if err := l.RunMicrotasks(); err != nil {
			return err
		}
		if len(l.timers) == 0 {
			return nil
		}
		next := l.timers[0]
		if wait := next.due.Sub(l.now()); wait > 0 {
			tm := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				tm.Stop()
				return ctx.Err()
			case <-tm.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		heap.Pop(&l.timers)
		if next.repeat {
			l.seq++
			next.seq = l.seq
			next.due = next.due.Add(max(next.interval, time.Millisecond))
			heap.Push(&l.timers, next)
		} else {
			delete(l.byID, next.id)
		}
		if err := next.fn(); err != nil {
			return err
		}
	}
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	t.index = -1
	return t
}
