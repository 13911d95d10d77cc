package risk

import (
	"errors"
	"fmt"
)

// ErrNoData means no grid or no current state exists for the symbol. It is not
// retried and surfaces to callers as "insufficient data". Out-of-range prices
// are NOT this error; those clamp to the grid boundary.
var ErrNoData = errors.New("insufficient data")

// ErrBaseSymbol rejects a pair-phase request for the base symbol itself: the
// base has no grid against its own denomination.
var ErrBaseSymbol = errors.New("base symbol has no pair phase")

// InvariantError marks corrupted per-symbol data: a non-monotonic grid or a
// day-count sum that disagrees with the total. It is fatal to the affected
// symbol's update and must never be silently corrected.
type InvariantError struct {
	Symbol string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation for %s: %s", e.Symbol, e.Reason)
}

// IsInvariant reports whether err is an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
