package harness

import (
	"testing"

	"github.com/roach88/fixpoint/internal/engine"
)

// Outcome is the result of a harness comparison.
//
// Pending means the named artifact did not exist and was captured as a new
// baseline; nothing was compared. Otherwise Mismatches holds every
// discrepancy found, empty when the database matches the fixpoint.
type Outcome struct {
	Fixpoint   string
	Pending    bool
	Mismatches []engine.Mismatch
}

// Clean reports whether the comparison ran and found no mismatches.
func (o *Outcome) Clean() bool {
	return !o.Pending && len(o.Mismatches) == 0
}

// Assert reports the outcome through the test framework: a pending baseline
// skips the test (actionable, not failed), and each mismatch becomes its own
// test error so diagnostics stay localized per table.
func (o *Outcome) Assert(t *testing.T) {
	t.Helper()

	if o.Pending {
		t.Skipf("fixpoint %q captured as new baseline; re-run to compare", o.Fixpoint)
	}
	for _, m := range o.Mismatches {
		t.Errorf("fixpoint %q: %s", o.Fixpoint, m)
	}
}
