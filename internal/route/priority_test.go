package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

// testRoute builds a route with one matcher group and a reverse proxy
// handler, the common case in tests.
func testRoute(id string, paths ...string) Route {
	r := Route{
		ID: id,
		Handlers: []Handler{
			{"handler": "reverse_proxy"},
		},
	}
	if len(paths) > 0 {
		r.Matchers = []Match{{Path: paths}}
	}
	return r
}

func TestIsHealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		route    Route
		expected bool
	}{
		{
			name:     "reserved id",
			route:    Route{ID: HealthCheckID},
			expected: true,
		},
		{
			name:     "health path",
			route:    testRoute("probe", "/health"),
			expected: true,
		},
		{
			name:     "health substring in longer path",
			route:    testRoute("probe", "/internal/health/live"),
			expected: true,
		},
		{
			name: "health path in second matcher group",
			route: Route{Matchers: []Match{
				{Path: []string{"/api"}},
				{Path: []string{"/health"}},
			}},
			expected: true,
		},
		{
			// Known fuzziness of the substring heuristic: a real
			// /healthcare service classifies as a health check.
			name:     "healthcare path",
			route:    testRoute("clinic", "/healthcare"),
			expected: true,
		},
		{
			name:     "regular api path",
			route:    testRoute("api", "/api/v1"),
			expected: false,
		},
		{
			name:     "no matchers",
			route:    Route{ID: "fallback"},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, IsHealthCheck(tc.route))
		})
	}
}

func TestResolvePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		route    Route
		expected int
	}{
		{
			name: "explicit priority wins",
			route: Route{
				ID:       "pinned",
				Matchers: []Match{{Path: []string{"/api/users"}}},
				Priority: intPtr(77),
			},
			expected: 77,
		},
		{
			name: "explicit priority wins even for health route",
			route: Route{
				ID:       HealthCheckID,
				Priority: intPtr(42),
			},
			expected: 42,
		},
		{
			name:     "health by id",
			route:    Route{ID: HealthCheckID},
			expected: PriorityHealth,
		},
		{
			name:     "health by path",
			route:    testRoute("probe", "/health"),
			expected: PriorityHealth,
		},
		{
			name:     "no matchers is fallback",
			route:    Route{ID: "catch-all"},
			expected: PriorityFallback,
		},
		{
			name: "host only matcher stays service",
			route: Route{Matchers: []Match{
				{Host: []string{"api.example.com"}},
			}},
			expected: PriorityService,
		},
		{
			name:     "admin path",
			route:    testRoute("admin", "/admin/users"),
			expected: PriorityAuthPath,
		},
		{
			name:     "auth path",
			route:    testRoute("login", "/auth/login"),
			expected: PriorityAuthPath,
		},
		{
			name:     "exact path",
			route:    testRoute("users", "/api/users"),
			expected: PrioritySpecificPath,
		},
		{
			name:     "prefix wildcard path",
			route:    testRoute("api", "/api/*"),
			expected: PrioritySpecificPath,
		},
		{
			name:     "pure wildcard only",
			route:    testRoute("wildcard", "/*"),
			expected: PriorityWildcard,
		},
		{
			name:     "wildcard plus specific keeps specific",
			route:    testRoute("mixed", "/*", "/api/*"),
			expected: PrioritySpecificPath,
		},
		{
			name:     "specific plus wildcard keeps specific regardless of order",
			route:    testRoute("mixed", "/api/*", "/*"),
			expected: PrioritySpecificPath,
		},
		{
			name: "wildcard and specific across matcher groups",
			route: Route{Matchers: []Match{
				{Path: []string{"/*"}},
				{Path: []string{"/api/users"}},
			}},
			expected: PrioritySpecificPath,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ResolvePriority(tc.route))
		})
	}
}
