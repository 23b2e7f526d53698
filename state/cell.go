package state

import (
	"fmt"
	"sort"
)

// ProcRec is the snapshot spec.md calls a "process step record": what a
// process will do the next time it is resumed. It has the same shape as a
// schedule Step; the distinct name mirrors the vocabulary of the spec.
type ProcRec = Step

// Cell is one completed run's post-step snapshot: the frontier of the
// execution after replaying a schedule.
type Cell struct {
	// Procs is the pending next step of every spawned process, in id order.
	Procs []ProcRec

	// RunProc, RunOp, RunTarget describe the step that produced this cell,
	// i.e. the last entry of the schedule that was replayed to reach it.
	RunProc   int
	RunOp     OpKind
	RunTarget int

	// Enabled holds the ids of processes that have not finished.
	Enabled map[int]bool

	// Backtrack holds the ids of processes the explorer must still try
	// from this state. Mutated in place by the explorer.
	Backtrack map[int]bool
}

// NewCell builds a Cell from a completed run's bookkeeping. last is the
// schedule step that produced this cell.
func NewCell(procs []ProcRec, last Step, enabled map[int]bool) *Cell {
	return &Cell{
		Procs:     procs,
		RunProc:   last.Proc,
		RunOp:     last.Op,
		RunTarget: last.Target,
		Enabled:   enabled,
		Backtrack: map[int]bool{},
	}
}

// LastStep reconstructs the Step that led into this cell.
func (c *Cell) LastStep() Step {
	return Step{Proc: c.RunProc, Op: c.RunOp, Target: c.RunTarget}
}

// EnabledIds returns the enabled process ids, sorted ascending so callers
// that need the minimum enabled id (required everywhere a deterministic
// choice has to be made, see spec.md §4.5) get it as the first element.
func (c *Cell) EnabledIds() []int {
	ids := make([]int, 0, len(c.Enabled))
	for id, ok := range c.Enabled {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func (c *Cell) String() string {
	return fmt.Sprintf("{last: (%v, %v, %c), enabled: %v, backtrack: %v}",
		c.RunProc, c.RunOp, Step{Target: c.RunTarget}.TargetLabel(), c.EnabledIds(), backtrackIds(c.Backtrack))
}

func backtrackIds(b map[int]bool) []int {
	ids := make([]int, 0, len(b))
	for id, ok := range b {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
