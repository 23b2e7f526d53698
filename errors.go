package dscheck

import "fmt"

// AssertionViolation is returned by Trace when a Check predicate fails on
// some reachable schedule (a Check failing inside a spawned process's body
// is returned as a *RunError instead, see Check). Trace, doesn't panic the way an invariant
// violation does — an assertion violation is the checker doing its job,
// not a bug in the checker (spec.md §7).
type AssertionViolation struct {
	Run    int
	Trace  string
	reason string
}

func (e *AssertionViolation) Error() string {
	return fmt.Sprintf("dscheck: assertion violation at run %d: %s\n%s", e.Run, e.reason, e.Trace)
}

// RunError wraps a panic raised by user process code (other than the
// internal cancellation sentinel) while a run was being replayed.
type RunError struct {
	Schedule []string
	Cause    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("dscheck: run failed: %v", e.Cause)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

// invariantViolation marks a bug in dscheck's own bookkeeping: the
// scheduler dispatched a step whose recorded (op, target) didn't match the
// process's actual next action, or the schedule was exhausted with no
// enabled processes remaining pending entries. Per spec.md §7 and §9
// (Open Question), these are hard-fatal and are never recovered by Trace.
type invariantViolation struct {
	msg string
}

func (e invariantViolation) Error() string {
	return "dscheck: invariant violation: " + e.msg
}

func violate(format string, args ...any) {
	panic(invariantViolation{msg: fmt.Sprintf(format, args...)})
}
