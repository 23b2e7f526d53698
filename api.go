package dscheck

import (
	"fmt"

	"github.com/lyrm/dscheck/trace"
)

// Spawn registers a logical process running body. body must perform all of
// its externally visible actions through the atomic façade (Make, Get,
// Set, Exchange, CompareAndSwap, FetchAndAdd) — those are the only points
// at which the cooperative scheduler can suspend it (spec.md §4.2, §5).
func Spawn(body func()) {
	rt.reg.Spawn(body)
}

// Every installs a callback invoked after every dispatched step of every
// run, with tracing disabled around the call (spec.md §4.4, §4.6).
func Every(f func()) {
	rt.everyCallbacks = append(rt.everyCallbacks, f)
}

// Final installs a callback invoked exactly once per run, when every
// spawned process has finished (spec.md §4.4, §4.6).
func Final(f func()) {
	rt.finalCallbacks = append(rt.finalCallbacks, f)
}

// Check evaluates pred with tracing disabled. If pred returns true,
// tracing is restored to whatever it was and Check returns normally. If
// pred returns false, Check prints the interleaving that led to this run
// (spec.md §6) and panics with an *AssertionViolation, which Trace
// recovers and returns as an error. When Check fails inside a spawned
// process's body, that process's goroutine recovers the panic instead, and
// Trace returns a *RunError whose Cause carries the violation's text.
func Check(pred func() bool) {
	var ok bool
	rt.withTracingOff(func() {
		ok = pred()
	})
	if ok {
		return
	}

	rendered := trace.FormatString(rt.runIndex, rt.numProcs, rt.currentSchedule)
	fmt.Printf("Found assertion violation at run %d:\n", rt.runIndex)
	fmt.Print(rendered)

	panic(&AssertionViolation{
		Run:    rt.runIndex,
		Trace:  rendered,
		reason: "predicate returned false",
	})
}
