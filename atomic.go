package dscheck

import (
	"sync"

	"github.com/lyrm/dscheck/state"
	"golang.org/x/exp/constraints"
)

// Cell is a sequentially consistent shared atomic cell, tagged with a
// stable id assigned in allocation order for the current run (spec.md §3).
//
// Cell has two modes, matching spec.md §4.1: when tracing is off (outside
// of a run, and inside a run while a Check predicate or an Every/Final
// callback is being evaluated) every operation is performed directly against the
// guarded value; when tracing is on, the operation is performed and then
// the calling process is suspended so the run driver can choose what runs
// next.
type Cell[T comparable] struct {
	id int
	mu sync.Mutex
	v  T
}

// Make creates a new atomic cell holding v and mints it a fresh id from the
// current run's counter (spec.md §4.3).
func Make[T comparable](v T) *Cell[T] {
	id := rt.reg.NextAtomicID()
	c := &Cell[T]{id: id, v: v}
	suspendIfTracing(state.Make, id)
	return c
}

// Get reads the current value of c.
func Get[T comparable](c *Cell[T]) T {
	c.mu.Lock()
	v := c.v
	c.mu.Unlock()
	suspendIfTracing(state.Get, c.id)
	return v
}

// Set writes v to c.
func Set[T comparable](c *Cell[T], v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
	suspendIfTracing(state.Set, c.id)
}

// Exchange writes v to c and returns the previous value.
func Exchange[T comparable](c *Cell[T], v T) T {
	c.mu.Lock()
	old := c.v
	c.v = v
	c.mu.Unlock()
	suspendIfTracing(state.Exchange, c.id)
	return old
}

// CompareAndSwap sets c to new if its current value equals old, and
// reports whether it did so.
func CompareAndSwap[T comparable](c *Cell[T], old, new T) bool {
	c.mu.Lock()
	ok := c.v == old
	if ok {
		c.v = new
	}
	c.mu.Unlock()
	suspendIfTracing(state.CompareAndSwap, c.id)
	return ok
}

// IntCell is a Cell restricted to integer payloads, the only payload kind
// FetchAndAdd is meaningful for. Constrained with
// golang.org/x/exp/constraints.Integer, the module the teacher already
// depends on for golang.org/x/exp/maps.
type IntCell[T constraints.Integer] struct {
	*Cell[T]
}

// MakeInt creates a new atomic integer cell holding v.
func MakeInt[T constraints.Integer](v T) *IntCell[T] {
	return &IntCell[T]{Cell: Make(v)}
}

// FetchAndAdd adds delta to c and returns the value from before the add.
func FetchAndAdd[T constraints.Integer](c *IntCell[T], delta T) T {
	c.mu.Lock()
	old := c.v
	c.v += delta
	c.mu.Unlock()
	suspendIfTracing(state.FetchAndAdd, c.id)
	return old
}

// Incr is FetchAndAdd(c, 1) with the result discarded.
func Incr[T constraints.Integer](c *IntCell[T]) {
	FetchAndAdd[T](c, 1)
}

// Decr is FetchAndAdd(c, -1) with the result discarded.
func Decr[T constraints.Integer](c *IntCell[T]) {
	FetchAndAdd[T](c, -1)
}

// suspendIfTracing performs step 4 of spec.md §4.3 for whichever atomic op
// just mutated storage in steps above: hand control back to the run driver
// if the current run is under tracing.
func suspendIfTracing(op state.OpKind, target int) {
	if !rt.tracing {
		return
	}
	if rt.current == nil {
		violate("atomic operation %v performed outside of a running process", op)
	}
	rt.current.Suspend(op, target)
}
