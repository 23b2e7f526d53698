package dscheck

import (
	"fmt"
	"io"

	"github.com/lyrm/dscheck/state"
	"github.com/lyrm/dscheck/trace"
)

// TraceOption configures a call to Trace.
type TraceOption func(*traceConfig)

type traceConfig struct {
	interleavings io.Writer
	recordTraces  bool
}

// WithInterleavings makes Trace print every fully explored interleaving, in
// the textual form spec.md §6 describes, to w as it is discovered.
func WithInterleavings(w io.Writer) TraceOption {
	return func(c *traceConfig) { c.interleavings = w }
}

// WithRecordedTraces makes Trace collect every explored schedule in memory,
// even when the dscheck_trace_file environment variable is not set. The
// collected schedules are written out only when that variable is set.
func WithRecordedTraces() TraceOption {
	return func(c *traceConfig) { c.recordTraces = true }
}

// Summary reports how much of the state space a Trace call explored.
type Summary struct {
	Interleavings int
	States        int
}

func (s Summary) String() string {
	return fmt.Sprintf("explored %d interleavings and %d states", s.Interleavings, s.States)
}

// Trace runs f once per schedule the DPOR search determines worth trying,
// evaluating every Check call along the way. It returns once the whole
// reduced state space has been covered, or as soon as a Check predicate
// fails or a process panics.
//
// An invariant violation — dscheck finding its own bookkeeping broken — is
// never recovered here; it propagates out of Trace as a panic (spec.md §7).
func Trace(f func(), opts ...TraceOption) (Summary, error) {
	cfg := &traceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	tracePath, hasTracePath := trace.FilePath()
	if hasTracePath {
		cfg.recordTraces = true
	}

	defer rt.resetHooks()
	rt.runIndex = 0

	ex := &explorer{f: f, cfg: cfg}
	if cfg.recordTraces {
		ex.tracker = trace.NewTracker()
	}

	var summary Summary
	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				av, ok := rec.(*AssertionViolation)
				if !ok {
					panic(rec) // invariant violations and anything else are hard-fatal
				}
				err = av
				summary = ex.summary()
			}
		}()
		summary, err = ex.run()
	}()

	if hasTracePath && ex.tracker != nil {
		if werr := ex.tracker.WriteFile(tracePath); werr != nil && err == nil {
			err = werr
		}
	}
	if err == nil && cfg.interleavings != nil {
		fmt.Fprintln(cfg.interleavings, summary.String())
	}

	return summary, err
}

// explorer holds the mutable search state for one Trace call.
type explorer struct {
	f       func()
	cfg     *traceConfig
	tracker *trace.Tracker

	interleavings int
	states        int
}

// frame is one level of the explicit depth-first search stack — the
// iterative form of explore's recursion (spec.md §4.5, design note 9 on
// recursion depth).
type frame struct {
	state      []*state.Cell
	clock      map[int]int
	lastAccess map[int]int
	dones      map[int]bool
	stepARan   bool
}

// run performs the full DPOR search and returns the accumulated Summary.
// Any error — an assertion violation or a recovered process panic —
// aborts the search immediately and is returned as-is; invariant
// violations are left to panic through uncaught.
func (ex *explorer) run() (Summary, error) {
	root, err := runOnce(ex.f, nil)
	if err != nil {
		return ex.summary(), err
	}

	stack := []*frame{{
		state:      []*state.Cell{root},
		clock:      map[int]int{},
		lastAccess: map[int]int{},
		dones:      map[int]bool{},
	}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		s := fr.state[len(fr.state)-1]

		if !fr.stepARan {
			stepA(fr.state, fr.lastAccess, s)
			fr.stepARan = true

			if len(s.Enabled) == 0 {
				ex.recordInterleaving(fr.state)
				stack = stack[:len(stack)-1]
				continue
			}
			if len(s.Backtrack) == 0 {
				s.Backtrack[s.EnabledIds()[0]] = true
			}
		}

		j, ok := nextCandidate(s.Backtrack, fr.dones)
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}
		fr.dones[j] = true

		proc := s.Procs[j]
		step := state.Step{Proc: j, Op: proc.Op, Target: proc.Target}
		schedule := append(historyOf(fr.state), step)

		newCell, err := runOnce(ex.f, schedule)
		if err != nil {
			return ex.summary(), err
		}
		ex.states++

		newState := make([]*state.Cell, len(fr.state)+1)
		copy(newState, fr.state)
		newState[len(fr.state)] = newCell

		newLastAccess := copyInts(fr.lastAccess)
		if step.HasTarget() {
			newLastAccess[step.Target] = len(newState) - 1
		}
		newClock := copyInts(fr.clock)
		newClock[j] = len(newState) - 1

		stack = append(stack, &frame{
			state:      newState,
			clock:      newClock,
			lastAccess: newLastAccess,
			dones:      map[int]bool{},
		})
	}

	return ex.summary(), nil
}

// stepA seeds backtrack points on earlier states for every enabled
// process whose pending step would race with the most recent access to
// its target (spec.md §4.5 Step A).
func stepA(history []*state.Cell, lastAccess map[int]int, s *state.Cell) {
	for _, pid := range s.EnabledIds() {
		proc := s.Procs[pid]
		if !proc.HasTarget() {
			continue
		}
		t := lastAccess[proc.Target]
		if t == 0 {
			continue
		}
		pred := history[t-1]
		if pred.Enabled[pid] {
			pred.Backtrack[pid] = true
			continue
		}
		for _, eid := range pred.EnabledIds() {
			pred.Backtrack[eid] = true
		}
	}
}

// nextCandidate returns the smallest id present in backtrack but not yet
// in dones, matching spec.md §4.5 Step B's min(backtrack \ dones).
func nextCandidate(backtrack, dones map[int]bool) (int, bool) {
	best := -1
	for id, on := range backtrack {
		if !on || dones[id] {
			continue
		}
		if best == -1 || id < best {
			best = id
		}
	}
	return best, best != -1
}

// historyOf reconstructs the schedule that produced the last cell of
// state, skipping the synthetic root cell at index 0 (spec.md §3,
// invariant 3).
func historyOf(states []*state.Cell) []state.Step {
	hist := make([]state.Step, 0, len(states)-1)
	for _, c := range states[1:] {
		hist = append(hist, c.LastStep())
	}
	return hist
}

func copyInts(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (ex *explorer) recordInterleaving(states []*state.Cell) {
	ex.interleavings++
	schedule := historyOf(states)
	if ex.tracker != nil {
		ex.tracker.Add(schedule)
	}
	if ex.cfg.interleavings != nil {
		numProcs := len(states[len(states)-1].Procs)
		trace.Format(ex.cfg.interleavings, ex.interleavings, numProcs, schedule)
	}
}

func (ex *explorer) summary() Summary {
	return Summary{Interleavings: ex.interleavings, States: ex.states}
}
