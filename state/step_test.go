package state

import "testing"

func TestTargetLabel(t *testing.T) {
	cases := []struct {
		target int
		want   byte
	}{
		{NoTarget, ' '},
		{1, 'a'},
		{2, 'b'},
		{26, 'z'},
	}
	for _, c := range cases {
		s := Step{Op: Get, Target: c.target}
		if got := s.TargetLabel(); got != c.want {
			t.Errorf("Step{Target: %v}.TargetLabel() = %q, want %q", c.target, got, c.want)
		}
	}
}

func TestOpKindString(t *testing.T) {
	if Start.String() != "start" {
		t.Errorf("Start.String() = %q, want %q", Start.String(), "start")
	}
	if FetchAndAdd.String() != "fetch_and_add" {
		t.Errorf("FetchAndAdd.String() = %q, want %q", FetchAndAdd.String(), "fetch_and_add")
	}
}
