/*
errors.go - Error types for the simulation engine

PURPOSE:
  The engine distinguishes two failure classes:

  1. Expected sampling misses - no cashier of the required category at the
     candidate station. These silently drop the planned transaction; they
     are a normal outcome of random sampling, not errors.
  2. Data integrity violations - a product, cashier, or campaign that
     cannot be resolved from the supplied collections. These fail loudly,
     because continuing would emit orphaned foreign-key references.

  Only class 2 produces error values; this file defines them.

USAGE:
  if errors.Is(err, sim.ErrMissingReference) {
      // inputs are inconsistent, abort the run
  }

SEE ALSO:
  - basket.go: raises missing product/campaign references
  - engine.go: raises missing cashier/card references
*/
package sim

import (
	"errors"
	"fmt"
)

// ErrMissingReference is the sentinel wrapped by every data integrity
// failure. Use with errors.Is().
var ErrMissingReference = errors.New("missing reference")

// MissingReferenceError identifies which reference could not be resolved.
type MissingReferenceError struct {
	Kind string // "product", "cashier", "card", "campaign"
	Ref  string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference: %s", e.Kind, e.Ref)
}

func (e *MissingReferenceError) Unwrap() error {
	return ErrMissingReference
}

func missingRef(kind, ref string) error {
	return &MissingReferenceError{Kind: kind, Ref: ref}
}
