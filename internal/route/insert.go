package route

// Position selects where a route lands when no anchor id is given.
type Position string

const (
	// PositionBeginning prepends the route.
	PositionBeginning Position = "beginning"

	// PositionEnd appends the route. This is also the default when no
	// placement option is set at all.
	PositionEnd Position = "end"

	// PositionAfterHealthChecks places the route one past the trailing run
	// of static content routes. It is resolved by the mutation manager
	// against the live sequence; InsertRelative itself treats it as an
	// append.
	PositionAfterHealthChecks Position = "after-health-checks"
)

// InsertOptions controls route placement for InsertRelative. BeforeID and
// AfterID take precedence over Position; with nothing set the route is
// appended. Exactly one placement outcome results per call.
type InsertOptions struct {
	Position Position
	BeforeID string
	AfterID  string
}

// InsertRelative returns a new sequence with newRoute spliced in at the
// position the options select, independent of priority. The input sequence
// is never modified. A BeforeID/AfterID anchor that does not exist yields an
// AnchorNotFoundError.
func InsertRelative(routes []Route, newRoute Route, opts InsertOptions) ([]Route, error) {
	idx := len(routes)
	switch {
	case opts.BeforeID != "":
		i, ok := indexByID(routes, opts.BeforeID)
		if !ok {
			return nil, &AnchorNotFoundError{ID: opts.BeforeID}
		}
		idx = i
	case opts.AfterID != "":
		i, ok := indexByID(routes, opts.AfterID)
		if !ok {
			return nil, &AnchorNotFoundError{ID: opts.AfterID}
		}
		idx = i + 1
	case opts.Position == PositionBeginning:
		idx = 0
	}

	out := make([]Route, 0, len(routes)+1)
	out = append(out, routes[:idx]...)
	out = append(out, newRoute)
	out = append(out, routes[idx:]...)
	return out, nil
}

// indexByID returns the index of the first route with the given id.
func indexByID(routes []Route, id string) (int, bool) {
	for i, r := range routes {
		if r.ID == id {
			return i, true
		}
	}
	return 0, false
}
