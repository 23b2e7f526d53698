// Package invariant provides small predicate combinators for use with
// dscheck.Check, grounded on erthbison-GoMC/checking/predicate.go's
// Eventually.
package invariant

// Observer holds the flag Eventually consults. dscheck itself never sets
// or clears Terminal; the caller does, for example with dscheck.Final(func()
// { obs.Terminal = true }). Within one run, dscheck calls the Every
// callbacks after each step, the last one included, before it calls the
// Final callbacks, and a flag set from Final stays set for later runs until
// the caller clears it.
type Observer struct {
	Terminal bool
}

// Eventually wraps pred so that it returns true without evaluating pred
// while obs.Terminal is false, and returns pred() while obs.Terminal is
// true, as opposed to a condition checked at every observation (see
// Always).
func Eventually(obs *Observer, pred func() bool) func() bool {
	return func() bool {
		if !obs.Terminal {
			return true
		}
		return pred()
	}
}

// Always is an identity wrapper over pred, documenting that it is meant
// to be checked at every observation rather than only at the end.
func Always(pred func() bool) func() bool {
	return pred
}
