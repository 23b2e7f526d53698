package trace

import (
	"os"

	"github.com/lyrm/dscheck/state"
)

// EnvVar is the environment variable spec.md §6 says enables collection of
// every explored schedule: dscheck_trace_file. If set, Trace writes the
// full set of explored schedules to the named path when exploration ends.
const EnvVar = "dscheck_trace_file"

// FilePath returns the configured trace file path and whether it was set.
func FilePath() (string, bool) {
	p := os.Getenv(EnvVar)
	return p, p != ""
}

// Tracker collects the schedule of every completed interleaving so it can
// be written out in one batch at the end of exploration. It is the
// collaborator spec.md §6 calls out as external to the core search: the
// core only needs to call Add once per interleaving and WriteFile once at
// the end.
type Tracker struct {
	schedules [][]state.Step
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records one fully explored interleaving's schedule.
func (t *Tracker) Add(schedule []state.Step) {
	cp := make([]state.Step, len(schedule))
	copy(cp, schedule)
	t.schedules = append(t.schedules, cp)
}

// Len reports how many schedules have been recorded.
func (t *Tracker) Len() int {
	return len(t.schedules)
}

// WriteFile writes every recorded schedule to path, one per line, in the
// order they were added. It truncates any existing file at path.
func (t *Tracker) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, schedule := range t.schedules {
		if _, err := f.WriteString(Line(schedule) + "\n"); err != nil {
			return err
		}
	}
	return nil
}
