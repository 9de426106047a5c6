package route

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	wire := `{
		"@id": "api",
		"match": [{"host": ["api.example.com"], "path": ["/api/*"]}],
		"handle": [{"handler": "reverse_proxy", "upstreams": [{"dial": "localhost:8080"}]}],
		"terminal": true,
		"priority": 30,
		"group": "edge",
		"metadata": {"team": "platform"}
	}`

	var r Route
	require.NoError(t, json.Unmarshal([]byte(wire), &r))

	assert.Equal(t, "api", r.ID)
	require.Len(t, r.Matchers, 1)
	assert.Equal(t, []string{"api.example.com"}, r.Matchers[0].Host)
	assert.Equal(t, []string{"/api/*"}, r.Matchers[0].Path)
	require.Len(t, r.Handlers, 1)
	assert.Equal(t, "reverse_proxy", r.Handlers[0].Kind())
	require.NotNil(t, r.Terminal)
	assert.True(t, *r.Terminal)
	require.NotNil(t, r.Priority)
	assert.Equal(t, 30, *r.Priority)

	// Unknown fields ("group", "metadata") survive the round trip.
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
}

func TestRoute_JSONOmitsAbsentFields(t *testing.T) {
	t.Parallel()

	r := Route{Handlers: []Handler{{"handler": StaticResponseKind}}}
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.NotContains(t, decoded, "@id")
	assert.NotContains(t, decoded, "match")
	assert.NotContains(t, decoded, "terminal")
	assert.NotContains(t, decoded, "priority")
	assert.Contains(t, decoded, "handle")
}

func TestRoute_JSONTerminalFalsePreserved(t *testing.T) {
	t.Parallel()

	wire := `{"handle": [{"handler": "static_response"}], "terminal": false}`

	var r Route
	require.NoError(t, json.Unmarshal([]byte(wire), &r))
	require.NotNil(t, r.Terminal)
	assert.False(t, *r.Terminal)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
}

func TestHandler_Kind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reverse_proxy", Handler{"handler": "reverse_proxy"}.Kind())
	assert.Equal(t, "", Handler{}.Kind())
	assert.Equal(t, "", Handler{"handler": 42}.Kind())
}

func TestMatch_FieldCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Match{}.fieldCount())
	assert.Equal(t, 1, Match{Path: []string{"/api"}}.fieldCount())
	assert.Equal(t, 3, Match{
		Host:   []string{"example.com"},
		Path:   []string{"/api"},
		Method: []string{"GET"},
	}.fieldCount())
	assert.Equal(t, 5, Match{
		Host:   []string{"example.com"},
		Path:   []string{"/api"},
		Method: []string{"GET"},
		Header: map[string][]string{"X-A": {"1"}},
		Query:  map[string][]string{"q": {"1"}},
	}.fieldCount())
}
