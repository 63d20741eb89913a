// Package sched is a cancelable timer registry on the audio sample clock.
package sched

import "container/heap"

// ID identifies a pending timer.
type ID uint64

// Kind tags a timer so a group can be canceled without touching others.
type Kind string

type timer struct {
	id    ID
	at    int64 // frame deadline
	seq   uint64
	kind  Kind
	fn    func()
	index int
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Registry holds pending callbacks ordered by frame deadline, ties broken by
// scheduling order. Callbacks run one at a time from RunDue; a callback may
// schedule or cancel timers freely.
//
// Registry is not safe for concurrent use.
type Registry struct {
	heap timerHeap
	byID map[ID]*timer
	next ID
	seq  uint64
}

func New() *Registry {
	return &Registry{byID: make(map[ID]*timer)}
}

// At schedules fn to run once the clock reaches frame at.
func (r *Registry) At(at int64, kind Kind, fn func()) ID {
	r.next++
	r.seq++
	t := &timer{id: r.next, at: at, seq: r.seq, kind: kind, fn: fn}
	heap.Push(&r.heap, t)
	r.byID[t.id] = t
	return t.id
}

// Cancel removes a pending timer. Canceling an unknown, fired or already
// canceled id is a no-op that returns false.
func (r *Registry) Cancel(id ID) bool {
	t, ok := r.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&r.heap, t.index)
	delete(r.byID, id)
	return true
}

// CancelKind removes every pending timer tagged kind and returns the count.
func (r *Registry) CancelKind(kind Kind) int {
	n := 0
	for id, t := range r.byID {
		if t.kind == kind {
			heap.Remove(&r.heap, t.index)
			delete(r.byID, id)
			n++
		}
	}
	return n
}

// CancelAll removes every pending timer and returns the count.
func (r *Registry) CancelAll() int {
	n := len(r.byID)
	for i := range r.heap {
		r.heap[i] = nil
	}
	r.heap = r.heap[:0]
	clear(r.byID)
	return n
}

// Len returns the number of pending timers.
func (r *Registry) Len() int { return len(r.byID) }

// Count returns the number of pending timers tagged kind.
func (r *Registry) Count(kind Kind) int {
	n := 0
	for _, t := range r.byID {
		if t.kind == kind {
			n++
		}
	}
	return n
}

// Next returns the earliest pending deadline.
func (r *Registry) Next() (int64, bool) {
	if len(r.heap) == 0 {
		return 0, false
	}
	return r.heap[0].at, true
}

// RunDue fires, in deadline order, every timer whose deadline is at or before
// now, including timers scheduled by callbacks during this call. It returns
// how many callbacks ran.
func (r *Registry) RunDue(now int64) int {
	ran := 0
	for len(r.heap) > 0 && r.heap[0].at <= now {
		t := heap.Pop(&r.heap).(*timer)
		delete(r.byID, t.id)
		t.fn()
		ran++
	}
	return ran
}
