package dscheck

import (
	"fmt"

	"github.com/lyrm/dscheck/registry"
	"github.com/lyrm/dscheck/state"
)

// runOnce is spec.md's do_run: it executes f under tracing against a fresh
// registry, replays schedule exactly, and returns the resulting state
// cell. See spec.md §4.4 for the numbered steps this follows.
func runOnce(f func(), schedule []state.Step) (cell *state.Cell, err error) {
	rt.runIndex++
	rt.currentSchedule = rt.currentSchedule[:0]
	rt.tracing = true

	defer func() {
		// Step 5: discontinue every still-parked process, then reset the
		// registry and atomic counter so the next run starts fresh.
		for _, p := range rt.reg.Processes() {
			if !p.Finished {
				p.Discontinue()
			}
		}
		rt.reg.Reset()
		rt.tracing = false
		rt.current = nil
	}()

	f() // spawns every process; none has run past Start yet
	rt.numProcs = rt.reg.Len()

	for _, step := range schedule {
		if allFinished(rt.reg.Processes()) {
			violate("do_run: schedule has remaining entries but no enabled processes")
		}

		proc := rt.reg.Get(step.Proc)
		if proc.Finished || proc.NextOp != step.Op || proc.NextTarget != step.Target {
			violate("do_run: process %d's recorded next step is (%v, %d), schedule requested (%v, %d)",
				step.Proc, proc.NextOp, proc.NextTarget, step.Op, step.Target)
		}

		rt.current = proc
		evt := proc.Resume()
		rt.current = nil

		rt.currentSchedule = append(rt.currentSchedule, step)

		if evt.Err != nil {
			return nil, &RunError{Schedule: stepStrings(rt.currentSchedule), Cause: evt.Err}
		}

		rt.withTracingOff(func() {
			for _, cb := range rt.everyCallbacks {
				cb()
			}
		})
	}

	procs := rt.reg.Processes()
	recs := make([]state.ProcRec, len(procs))
	enabled := map[int]bool{}
	for i, p := range procs {
		recs[i] = state.ProcRec{Proc: p.ID, Op: p.NextOp, Target: p.NextTarget}
		if !p.Finished {
			enabled[p.ID] = true
		}
	}

	if len(enabled) == 0 {
		rt.withTracingOff(func() {
			for _, cb := range rt.finalCallbacks {
				cb()
			}
		})
	}

	var last state.Step
	if len(schedule) > 0 {
		last = schedule[len(schedule)-1]
	}
	return state.NewCell(recs, last, enabled), nil
}

func allFinished(procs []*registry.Process) bool {
	for _, p := range procs {
		if !p.Finished {
			return false
		}
	}
	return true
}

func stepStrings(steps []state.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = fmt.Sprintf("%d:%v:%c", s.Proc, s.Op, s.TargetLabel())
	}
	return out
}
