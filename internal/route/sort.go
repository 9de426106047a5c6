package route

import "sort"

// Sort returns a new sequence ordered for first-match evaluation: ascending
// effective priority, more specific routes first within a priority band, and
// original input order preserved for exact ties.
//
// The input sequence and its routes are never modified. Resolved priorities
// are a sorting-time concept only: the returned routes have the priority
// field stripped, since the proxy does not understand it.
func Sort(routes []Route) []Route {
	type entry struct {
		route       Route
		priority    int
		specificity int
	}

	entries := make([]entry, len(routes))
	for i, r := range routes {
		entries[i] = entry{
			route:       r,
			priority:    ResolvePriority(r),
			specificity: ScoreSpecificity(r),
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].specificity > entries[j].specificity
	})

	out := make([]Route, len(entries))
	for i, e := range entries {
		out[i] = e.route
		out[i].Priority = nil
	}
	return out
}
