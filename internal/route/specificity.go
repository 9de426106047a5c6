package route

import "strings"

// ScoreSpecificity computes the tiebreak score used within a priority band:
// strictly larger means more specific. The score rewards exact paths and
// hosts over patterns, and routes constraining several criteria at once
// over single-criterion ones. A route with no matchers scores zero.
func ScoreSpecificity(r Route) int {
	score := 0
	for _, m := range r.Matchers {
		for _, path := range m.Path {
			score += scorePath(path)
		}
		for _, host := range m.Host {
			if strings.Contains(host, "*") {
				score += 10
			} else {
				score += 20
			}
		}
		score += 5 * m.fieldCount()
	}
	return score
}

func scorePath(path string) int {
	switch {
	case path == "/*":
		return 10
	case !strings.Contains(path, "*") && !strings.Contains(path, "{"):
		// Exact path, no pattern at all.
		return 100
	case strings.Contains(path, "{"):
		// Placeholder paths like /users/{id}.
		return 50
	case strings.HasSuffix(path, "*"):
		// Prefix wildcard: longer concrete prefixes score higher.
		return 30 + 5*segmentCount(path)
	default:
		return 20
	}
}

// segmentCount counts the concrete segments of a path, skipping empty and
// pure wildcard segments.
func segmentCount(path string) int {
	count := 0
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "*" {
			continue
		}
		count++
	}
	return count
}
