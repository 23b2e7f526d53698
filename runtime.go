// Package dscheck is a dynamic partial-order reduction (DPOR) model
// checker for Go programs that communicate exclusively through atomic
// shared-memory cells. A user-supplied test function spawns logical
// processes with Spawn and operates on cells created with Make; Trace
// drives the cooperative scheduler through every schedule the reduction
// determines is worth exploring, evaluating Check assertions along the way.
package dscheck

import (
	"github.com/lyrm/dscheck/registry"
	"github.com/lyrm/dscheck/state"
)

// runtime is the process-wide state the atomic façade, the run driver, and
// the explorer all share. There is exactly one: dscheck's external API
// (spec.md §6) is a set of free functions operating on cells with no
// explicit context parameter, so — per design note 9.2 — the pieces that
// would otherwise be scattered globals (the tracing flag, the atomic id
// counter, the currently-running process) are collected as fields here
// instead. It is safe without a mutex because the cooperative scheduler
// (§5) guarantees only one goroutine is ever unblocked at a time.
type runtime struct {
	reg     *registry.Registry
	tracing bool
	current *registry.Process

	everyCallbacks []func()
	finalCallbacks []func()

	// Bookkeeping for the run currently being replayed, used by Check to
	// print the offending interleaving (spec.md §4.6, §6).
	runIndex        int
	currentSchedule []state.Step
	numProcs        int
}

// rt is the single runtime instance backing the package-level API.
var rt = newRuntime()

func newRuntime() *runtime {
	return &runtime{reg: registry.New()}
}

// resetHooks clears the every/final callbacks. Called once per Trace
// invocation, when it returns, not per run: the callbacks are configured
// before exploring and apply to every run of that exploration.
func (r *runtime) resetHooks() {
	r.everyCallbacks = nil
	r.finalCallbacks = nil
}

// withTracingOff runs f with tracing disabled, restoring the previous
// value afterwards, exactly as spec.md §4.6 describes for check and the
// every/final callback dispatch in §4.4.
func (r *runtime) withTracingOff(f func()) {
	prev := r.tracing
	r.tracing = false
	defer func() { r.tracing = prev }()
	f()
}
