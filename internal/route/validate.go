package route

import (
	"fmt"
	"strings"
)

// ValidateOrdering asserts the three ordering invariants over an already
// ordered sequence and returns the first violation found, one per call:
//
//  1. the designated health check route, when present, sits at index 0;
//  2. effective priorities are non-decreasing left to right;
//  3. within each host group, no pure wildcard route appears before a route
//     with a more specific path on the same host.
//
// Sort does not call this; validation is an explicit step so a caller may
// accept a manually built sequence on purpose.
func ValidateOrdering(routes []Route) error {
	if err := validateHealthFirst(routes); err != nil {
		return err
	}
	if err := validateMonotonicPriority(routes); err != nil {
		return err
	}
	return validateWildcardLast(routes)
}

func validateHealthFirst(routes []Route) error {
	for i, r := range routes {
		if !IsHealthCheck(r) {
			continue
		}
		if i > 0 {
			return &OrderingError{Reason: fmt.Sprintf(
				"health check route %q must be first, found at index %d", routeLabel(r, i), i)}
		}
		return nil
	}
	return nil
}

func validateMonotonicPriority(routes []Route) error {
	for i := 0; i+1 < len(routes); i++ {
		left := ResolvePriority(routes[i])
		right := ResolvePriority(routes[i+1])
		if left > right {
			return &OrderingError{Reason: fmt.Sprintf(
				"ordering violation: route %q (priority %d) appears before route %q (priority %d)",
				routeLabel(routes[i], i), left, routeLabel(routes[i+1], i+1), right)}
		}
	}
	return nil
}

func validateWildcardLast(routes []Route) error {
	for _, group := range hostGroups(routes) {
		wildcardIdx := -1
		for _, idx := range group.indexes {
			if wildcardIdx == -1 {
				if hasPureWildcardPath(routes[idx]) {
					wildcardIdx = idx
				}
				continue
			}
			if path, ok := firstSpecificPath(routes[idx]); ok {
				return &OrderingError{Reason: fmt.Sprintf(
					"ordering violation: wildcard route %q precedes more specific route %q (path %q) for host %q",
					routeLabel(routes[wildcardIdx], wildcardIdx), routeLabel(routes[idx], idx), path, group.host)}
			}
		}
	}
	return nil
}

// routeLabel names a route in error messages: its id when set, a positional
// placeholder otherwise.
func routeLabel(r Route, idx int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("route-%d", idx)
}

type hostGroup struct {
	host    string
	indexes []int
}

// hostGroups buckets route indexes by every host they match, preserving both
// sequence order within a group and first-appearance order across groups so
// the "first violation" reported is deterministic. Routes without a host
// matcher land in the implicit "*" group.
func hostGroups(routes []Route) []hostGroup {
	byHost := make(map[string]int)
	var groups []hostGroup

	add := func(host string, idx int) {
		pos, ok := byHost[host]
		if !ok {
			pos = len(groups)
			byHost[host] = pos
			groups = append(groups, hostGroup{host: host})
		}
		groups[pos].indexes = append(groups[pos].indexes, idx)
	}

	for i, r := range routes {
		seen := make(map[string]bool)
		addOnce := func(host string) {
			if !seen[host] {
				seen[host] = true
				add(host, i)
			}
		}
		if len(r.Matchers) == 0 {
			addOnce("*")
		}
		for _, m := range r.Matchers {
			if len(m.Host) == 0 {
				addOnce("*")
				continue
			}
			for _, h := range m.Host {
				addOnce(h)
			}
		}
	}

	return groups
}

func hasPureWildcardPath(r Route) bool {
	for _, m := range r.Matchers {
		for _, path := range m.Path {
			if path == "/*" {
				return true
			}
		}
	}
	return false
}

// firstSpecificPath returns the first path entry carrying no wildcard at
// all, the kind of path that must never trail a pure wildcard on its host.
func firstSpecificPath(r Route) (string, bool) {
	for _, m := range r.Matchers {
		for _, path := range m.Path {
			if path != "/*" && !strings.Contains(path, "*") {
				return path, true
			}
		}
	}
	return "", false
}
