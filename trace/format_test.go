package trace

import (
	"strings"
	"testing"

	"github.com/lyrm/dscheck/state"
)

func TestFormatMatchesStableShape(t *testing.T) {
	steps := []state.Step{
		{Proc: 0, Op: state.Start, Target: state.NoTarget},
		{Proc: 1, Op: state.Start, Target: state.NoTarget},
		{Proc: 0, Op: state.Make, Target: 1},
		{Proc: 0, Op: state.Set, Target: 1},
		{Proc: 1, Op: state.Get, Target: 1},
	}
	out := FormatString(1, 2, steps)

	if !strings.HasPrefix(out, "sequence 1\n") {
		t.Errorf("output does not start with the sequence header: %q", out)
	}
	if !strings.Contains(out, "P0\t\t\tP1") {
		t.Errorf("output missing process column header: %q", out)
	}
	if !strings.Contains(out, "make a") {
		t.Errorf("output missing rendered make step with target label 'a': %q", out)
	}
	if strings.Count(out, strings.Repeat("-", 40)) != 3 {
		t.Errorf("expected 3 bars in output, got: %q", out)
	}
}

func TestLineIsStableAndTabSeparated(t *testing.T) {
	steps := []state.Step{
		{Proc: 0, Op: state.Get, Target: 1},
		{Proc: 1, Op: state.Set, Target: 2},
	}
	got := Line(steps)
	want := "0:get:a\t1:set:b"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}
