package route

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeIDs(routes []Route) []string {
	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
	}
	return ids
}

func TestSort_HealthFirst(t *testing.T) {
	t.Parallel()

	routes := []Route{
		testRoute("wildcard", "/*"),
		{ID: HealthCheckID, Handlers: []Handler{{"handler": StaticResponseKind}}},
		testRoute("api", "/api/*"),
	}

	sorted := Sort(routes)
	require.Len(t, sorted, 3)
	assert.Equal(t, HealthCheckID, sorted[0].ID)
}

func TestSort_SpecificityTiebreak(t *testing.T) {
	t.Parallel()

	routes := []Route{
		testRoute("wildcard", "/*"),
		testRoute("specific", "/api/*"),
	}

	sorted := Sort(routes)
	assert.Equal(t, []string{"specific", "wildcard"}, routeIDs(sorted))
}

func TestSort_SpecificityTiebreakWithinBand(t *testing.T) {
	t.Parallel()

	// Same priority band, different exactness.
	routes := []Route{
		testRoute("placeholder", "/api/{id}"),
		testRoute("exact", "/api/users"),
	}

	sorted := Sort(routes)
	assert.Equal(t, []string{"exact", "placeholder"}, routeIDs(sorted))
}

func TestSort_ExplicitPriorityOverridesSpecificity(t *testing.T) {
	t.Parallel()

	lowPrioritySpecific := testRoute("low-priority-specific", "/api/*")
	lowPrioritySpecific.Priority = intPtr(100)
	highPriorityWildcard := testRoute("high-priority-wildcard", "/*")
	highPriorityWildcard.Priority = intPtr(10)

	sorted := Sort([]Route{lowPrioritySpecific, highPriorityWildcard})
	assert.Equal(t, []string{"high-priority-wildcard", "low-priority-specific"}, routeIDs(sorted))
}

func TestSort_StableTieOrder(t *testing.T) {
	t.Parallel()

	routes := []Route{
		{ID: "route-1", Handlers: []Handler{{"handler": "reverse_proxy"}}, Priority: intPtr(50)},
		{ID: "route-2", Handlers: []Handler{{"handler": "reverse_proxy"}}, Priority: intPtr(50)},
		{ID: "route-3", Handlers: []Handler{{"handler": "reverse_proxy"}}, Priority: intPtr(50)},
	}

	sorted := Sort(routes)
	assert.Equal(t, []string{"route-1", "route-2", "route-3"}, routeIDs(sorted))
}

func TestSort_StripsPriority(t *testing.T) {
	t.Parallel()

	pinned := testRoute("pinned", "/api/users")
	pinned.Priority = intPtr(30)

	sorted := Sort([]Route{pinned})
	require.Len(t, sorted, 1)
	assert.Nil(t, sorted[0].Priority)

	// The caller's route keeps its declared priority.
	require.NotNil(t, pinned.Priority)
	assert.Equal(t, 30, *pinned.Priority)
}

func TestSort_Idempotent(t *testing.T) {
	t.Parallel()

	routes := []Route{
		testRoute("wildcard", "/*"),
		{ID: HealthCheckID, Handlers: []Handler{{"handler": StaticResponseKind}}},
		testRoute("api", "/api/*"),
		testRoute("users", "/api/users"),
		testRoute("admin", "/admin/*"),
		{ID: "fallback", Handlers: []Handler{{"handler": StaticResponseKind}}},
	}

	once := Sort(routes)
	twice := Sort(once)

	onceJSON, err := json.Marshal(once)
	require.NoError(t, err)
	twiceJSON, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.Equal(t, string(onceJSON), string(twiceJSON))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	routes := []Route{
		testRoute("wildcard", "/*"),
		testRoute("api", "/api/*"),
		{ID: HealthCheckID, Handlers: []Handler{{"handler": StaticResponseKind}}},
	}
	routes[1].Priority = intPtr(50)

	before, err := json.Marshal(routes)
	require.NoError(t, err)

	_ = Sort(routes)

	after, err := json.Marshal(routes)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSort_EndToEnd(t *testing.T) {
	t.Parallel()

	routes := []Route{
		testRoute("wildcard", "/*"),
		{ID: HealthCheckID, Handlers: []Handler{{"handler": StaticResponseKind}}},
		testRoute("api", "/api/*"),
	}

	sorted := Sort(routes)
	assert.Equal(t, []string{HealthCheckID, "api", "wildcard"}, routeIDs(sorted))
	assert.NoError(t, ValidateOrdering(sorted))
}

func TestSort_EmptySequence(t *testing.T) {
	t.Parallel()

	sorted := Sort(nil)
	assert.Empty(t, sorted)
}
