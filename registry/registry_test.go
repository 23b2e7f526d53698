package registry

import (
	"testing"

	"github.com/lyrm/dscheck/state"
)

func TestSpawnParksAtStart(t *testing.T) {
	r := New()
	ran := false
	pid := r.Spawn(func() {
		ran = true
	})
	if pid != 0 {
		t.Fatalf("first spawned process id = %v, want 0", pid)
	}
	p := r.Get(pid)
	if p.NextOp != state.Start {
		t.Errorf("NextOp = %v, want Start", p.NextOp)
	}
	if ran {
		t.Errorf("body ran before first Resume")
	}
}

func TestResumeAdvancesToNextAtomicOp(t *testing.T) {
	r := New()
	pid := r.Spawn(func() {
		p := r.Get(0)
		p.Suspend(state.Get, 1)
	})
	p := r.Get(pid)
	p.Resume() // consumes the Start step, runs until the Get suspend
	if p.NextOp != state.Get || p.NextTarget != 1 {
		t.Errorf("after Resume: NextOp=%v NextTarget=%v, want Get/1", p.NextOp, p.NextTarget)
	}
	if p.Finished {
		t.Errorf("process reported finished too early")
	}
}

func TestResumePastBodyReturnMarksFinished(t *testing.T) {
	r := New()
	pid := r.Spawn(func() {})
	p := r.Get(pid)
	evt := p.Resume()
	if !evt.Finished || !p.Finished {
		t.Errorf("expected process to finish on first Resume of an empty body")
	}
}

func TestDiscontinueUnblocksParkedProcess(t *testing.T) {
	r := New()
	pid := r.Spawn(func() {
		p := r.Get(0)
		p.Suspend(state.Get, 1) // will be cancelled here
	})
	p := r.Get(pid)
	p.Resume()
	done := make(chan struct{})
	go func() {
		p.Discontinue()
		close(done)
	}()
	<-done
}

func TestNextAtomicIDIsDenseFromOne(t *testing.T) {
	r := New()
	if id := r.NextAtomicID(); id != 1 {
		t.Errorf("first NextAtomicID() = %v, want 1", id)
	}
	if id := r.NextAtomicID(); id != 2 {
		t.Errorf("second NextAtomicID() = %v, want 2", id)
	}
	r.Reset()
	if id := r.NextAtomicID(); id != 1 {
		t.Errorf("NextAtomicID() after Reset = %v, want 1", id)
	}
}
