// Package route implements the ordering model for reverse proxy route
// sequences: effective priorities, specificity scoring, stable sorting,
// ordering validation, and priority-independent positional insertion.
//
// The proxy evaluates its routes top to bottom and stops at the first
// match, so an inverted sequence silently changes behavior without any
// schema error. Ordering is governed by two signals:
//
//   - Priority: an integer in [0, 100], lower evaluates earlier. Either
//     declared on the route or inferred from its path matchers via
//     ResolvePriority.
//   - Specificity: a derived score breaking ties within a priority band,
//     more exact patterns first, via ScoreSpecificity.
//
// The designated health check route always evaluates first regardless of
// other rules.
//
// Typical flow:
//
//	sorted := route.Sort(routes)
//	if err := route.ValidateOrdering(sorted); err != nil {
//	    return err
//	}
//
// All functions in this package are pure: they never modify their inputs
// and produce new sequences. Remote reads and writes live in the store and
// manager packages.
package route
