package route

import "fmt"

// OrderingError reports a violated ordering invariant found by
// ValidateOrdering. It is never retried; the caller must re-sort or fix the
// sequence. The message wording is part of the external contract: consumers
// match on "must be first" and "ordering violation".
type OrderingError struct {
	Reason string
}

func (e *OrderingError) Error() string {
	return e.Reason
}

// AnchorNotFoundError reports a BeforeID/AfterID target that does not exist
// in the sequence.
type AnchorNotFoundError struct {
	ID string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("anchor route with id %q not found", e.ID)
}

// MalformedRouteError reports a route failing basic shape validation. It is
// surfaced before any mutation write is attempted.
type MalformedRouteError struct {
	ID     string
	Reason string
}

func (e *MalformedRouteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed route %q: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed route: %s", e.Reason)
}
