package route

import "strings"

// Priority values per route category, ascending. Lower values evaluate
// earlier. The exact numbers are part of the external contract; consumers
// may depend on them.
const (
	PriorityHealth       = 0
	PriorityAuthDomain   = 10
	PriorityAuthPath     = 20
	PrioritySpecificPath = 30
	PriorityRewrite      = 40
	PriorityService      = 50
	PriorityWildcard     = 90
	PriorityFallback     = 100
)

// HealthCheckID is the reserved id of the designated health check route.
const HealthCheckID = "global-health"

// IsHealthCheck reports whether r is the designated health check route:
// either it carries the reserved id, or some matcher path contains the
// literal "health".
//
// The substring test is deliberately fuzzy and also catches paths like
// /healthcare. Swapping this predicate for a stricter mechanism (an
// explicit kind tag on the route) would not touch sorting or validation.
func IsHealthCheck(r Route) bool {
	if r.ID == HealthCheckID {
		return true
	}
	for _, m := range r.Matchers {
		for _, path := range m.Path {
			if strings.Contains(path, "health") {
				return true
			}
		}
	}
	return false
}

// ResolvePriority returns the route's effective priority: the declared value
// when present, otherwise a value inferred from the route's identity and
// path matchers.
//
// An explicit priority always wins, even when it produces an unusual order;
// catching that is ValidateOrdering's job, not this function's.
func ResolvePriority(r Route) int {
	if r.Priority != nil {
		return *r.Priority
	}
	if IsHealthCheck(r) {
		return PriorityHealth
	}
	if len(r.Matchers) == 0 {
		// Pure catch-all carrying zero information.
		return PriorityFallback
	}

	// Health paths never reach this scan; IsHealthCheck claimed them above.
	priority := PriorityService
	pureWildcard := false
	for _, m := range r.Matchers {
		for _, path := range m.Path {
			switch {
			case strings.Contains(path, "/admin"), strings.Contains(path, "/auth"):
				priority = min(priority, PriorityAuthPath)
			case path == "/*":
				pureWildcard = true
			default:
				// Both exact paths and partial wildcards count as specific.
				priority = min(priority, PrioritySpecificPath)
			}
		}
	}

	// The pure wildcard only sinks the route to the wildcard band when no
	// more specific path lowered the value; a wildcard must never raise an
	// otherwise specific route. With only host or method matchers the value
	// stays at PriorityService.
	if pureWildcard && priority == PriorityService {
		priority = PriorityWildcard
	}

	return priority
}
