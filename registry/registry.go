// Package registry holds the per-run bookkeeping for spawned processes:
// one record per logical process, and the monotonic atomic-id counter used
// to mint stable ids for atomic cells created during a run.
//
// A Registry is rebuilt from scratch for every run (see spec.md §4.2): the
// user's test function is re-executed from the top under the driver, and
// Spawn is called again for each logical process in the same order, which
// is what makes ids and process indices stable across replays of the same
// schedule.
package registry

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/lyrm/dscheck/state"
)

// Event is what a process goroutine reports back to the run driver: either
// the step it just parked at, or that its body has returned (Finished), or
// that it panicked with something other than the internal cancellation
// sentinel (Err).
type Event struct {
	Finished bool
	Op       state.OpKind
	Target   int
	Err      error
}

// Process is the mutable record of one spawned logical process.
//
// NextOp/NextTarget describe the step this process will perform the next
// time it is resumed; the run driver asserts a schedule entry against
// these fields before resuming (spec.md §4.4, invariant 1 of §3).
type Process struct {
	ID         int
	NextOp     state.OpKind
	NextTarget int
	Finished   bool

	advance chan struct{}
	cancel  chan struct{}
	events  chan Event
}

// Resume lets the process run forward by exactly one step: until its next
// atomic operation (which updates NextOp/NextTarget) or until its body
// returns (which sets Finished). It blocks until the process parks again.
func (p *Process) Resume() Event {
	p.advance <- struct{}{}
	evt := <-p.events
	if evt.Finished {
		p.Finished = true
	} else {
		p.NextOp = evt.Op
		p.NextTarget = evt.Target
	}
	return evt
}

// Discontinue cancels a still-parked process by closing its cancel channel.
// Safe to call at most once per process per run; the run driver guarantees
// this by only discontinuing processes that are not yet Finished.
func (p *Process) Discontinue() {
	close(p.cancel)
}

// Suspend is called from inside the process's own goroutine, by the atomic
// façade, to park the process after performing one atomic operation. (The
// park at the synthetic Start step happens in Spawn's goroutine before body
// runs, not here.) It blocks until Resume or Discontinue is called.
//
// Suspend is exported so the root package's atomic façade can call it on
// the process the run driver currently has permitted to run; user code
// never calls it directly.
func (p *Process) Suspend(op state.OpKind, target int) {
	p.events <- Event{Op: op, Target: target}
	select {
	case <-p.advance:
	case <-p.cancel:
		panic(terminatedEarly{})
	}
}

// terminatedEarly is the internal cancellation sentinel thrown into a
// process that is still parked when its run ends. It must never escape a
// process's goroutine (see spec.md §5, §7).
type terminatedEarly struct{}

// Registry is the table of processes spawned during the current run.
type Registry struct {
	mu         sync.Mutex
	procs      []*Process
	atomicNext int
}

// New creates an empty Registry, ready for a run.
func New() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.procs = nil
	r.atomicNext = 1
}

// Reset clears the registry at the end of a run (spec.md §4.4 step 5).
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// Spawn registers a new logical process running body on a dedicated
// goroutine and returns its id. body calls into the root package's atomic
// façade at every suspension point and nowhere else (spec.md §5); it takes
// no arguments, matching spec.md's spawn(f).
//
// The goroutine is started immediately but blocks until the first Resume
// (the schedule's synthetic Start step) before running body at all.
func (r *Registry) Spawn(body func()) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Process{
		ID:      len(r.procs),
		NextOp:  state.Start,
		advance: make(chan struct{}),
		cancel:  make(chan struct{}),
		events:  make(chan Event),
	}
	r.procs = append(r.procs, p)

	go func() {
		select {
		case <-p.advance:
		case <-p.cancel:
			return
		}
		var runErr error
		cancelled := false
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					if _, ok := rec.(terminatedEarly); ok {
						cancelled = true
						return
					}
					runErr = panicToError(rec)
				}
			}()
			body()
		}()
		if cancelled {
			// Nobody reads events after a Discontinue; exit instead of
			// blocking on the send.
			return
		}
		p.events <- Event{Finished: true, Err: runErr}
	}()

	return p.ID
}

// panicToError turns a recovered panic value from user code into an error
// carrying a captured stack trace, the way
// erthbison-GoMC/runSimulator.go's executeEvent reports a node panic.
func panicToError(rec any) error {
	return fmt.Errorf("process panicked: %v\nStack Trace:\n%s", rec, debug.Stack())
}

// Processes returns the process records in id order. The slice and its
// pointees must not be mutated by callers other than the run driver.
func (r *Registry) Processes() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Process, len(r.procs))
	copy(out, r.procs)
	return out
}

// Get returns the process record with the given id.
func (r *Registry) Get(id int) *Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.procs[id]
}

// Len returns the number of spawned processes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// NextAtomicID mints the next atomic id for this run. Ids are dense
// positive integers assigned in allocation order (spec.md §3, invariant 2).
func (r *Registry) NextAtomicID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.atomicNext
	r.atomicNext++
	return id
}
