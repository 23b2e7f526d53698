package invariant

import "testing"

func TestEventually(t *testing.T) {
	always := func() bool { return true }
	never := func() bool { return false }

	tests := []struct {
		terminal bool
		pred     func() bool
		expected bool
	}{
		{terminal: false, pred: never, expected: true},
		{terminal: true, pred: always, expected: true},
		{terminal: true, pred: never, expected: false},
	}

	for i, test := range tests {
		obs := &Observer{Terminal: test.terminal}
		out := Eventually(obs, test.pred)()
		if out != test.expected {
			t.Errorf("test %d: Eventually() = %v, want %v", i, out, test.expected)
		}
	}
}

func TestAlways(t *testing.T) {
	calls := 0
	pred := func() bool {
		calls++
		return calls == 1
	}
	wrapped := Always(pred)
	if !wrapped() {
		t.Errorf("first call: wrapped() = false, want true")
	}
	if wrapped() {
		t.Errorf("second call: wrapped() = true, want false")
	}
}
