package route

import (
	"encoding/json"
	"fmt"
)

// Match is one group of simultaneous match conditions. A route may carry
// several alternative groups; a request matches the route when any single
// group matches in full. An empty group matches everything.
type Match struct {
	Host   []string            `json:"host,omitempty"`
	Path   []string            `json:"path,omitempty"`
	Method []string            `json:"method,omitempty"`
	Header map[string][]string `json:"header,omitempty"`
	Query  map[string][]string `json:"query,omitempty"`
}

// fieldCount returns how many criteria the group constrains at once.
func (m Match) fieldCount() int {
	count := 0
	if len(m.Host) > 0 {
		count++
	}
	if len(m.Path) > 0 {
		count++
	}
	if len(m.Method) > 0 {
		count++
	}
	if len(m.Header) > 0 {
		count++
	}
	if len(m.Query) > 0 {
		count++
	}
	return count
}

// Handler is an opaque handler specification. The proxy interprets it; this
// layer only reads the "handler" discriminator and passes everything else
// through unchanged.
type Handler map[string]interface{}

// Kind returns the handler discriminator, or "" when absent.
func (h Handler) Kind() string {
	kind, _ := h["handler"].(string)
	return kind
}

// StaticResponseKind is the handler kind the proxy uses for static content.
// Health probe routes are conventionally built on it.
const StaticResponseKind = "static_response"

// Route is one matchable rule producing a handler chain. Evaluation order in
// the proxy is first match wins, so the position of a route inside a
// sequence is part of its meaning.
//
// Top-level fields this layer does not interpret survive an
// unmarshal/marshal round trip untouched.
type Route struct {
	// ID is the optional unique identifier used for targeted replace and
	// remove operations. Uniqueness is not enforced here.
	ID string

	// Matchers lists the alternative match groups (OR semantics). No
	// matchers means the route matches everything.
	Matchers []Match

	// Handlers is the opaque handler chain, at least one entry.
	Handlers []Handler

	// Terminal is passed through unchanged and plays no part in ordering.
	Terminal *bool

	// Priority is the optional declared ordering key, 0 to 100. When set it
	// always wins over the inferred priority. The sorter strips it from its
	// output since the proxy does not understand the field.
	Priority *int

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the route wire shape, keeping unknown top-level
// fields aside so they can be written back verbatim.
func (r *Route) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal route: %w", err)
	}

	*r = Route{}
	for key, val := range raw {
		var err error
		switch key {
		case "@id":
			err = json.Unmarshal(val, &r.ID)
		case "match":
			err = json.Unmarshal(val, &r.Matchers)
		case "handle":
			err = json.Unmarshal(val, &r.Handlers)
		case "terminal":
			err = json.Unmarshal(val, &r.Terminal)
		case "priority":
			err = json.Unmarshal(val, &r.Priority)
		default:
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			r.extra[key] = val
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to unmarshal route field %q: %w", key, err)
		}
	}

	return nil
}

// MarshalJSON encodes the route wire shape, merging back any unknown fields
// captured during unmarshal.
func (r Route) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.extra)+5)
	for key, val := range r.extra {
		out[key] = val
	}
	if r.ID != "" {
		out["@id"] = r.ID
	}
	if len(r.Matchers) > 0 {
		out["match"] = r.Matchers
	}
	if r.Handlers != nil {
		out["handle"] = r.Handlers
	}
	if r.Terminal != nil {
		out["terminal"] = *r.Terminal
	}
	if r.Priority != nil {
		out["priority"] = *r.Priority
	}
	return json.Marshal(out)
}

// CheckShape verifies the minimal structural requirements a route must meet
// before it may be written to the store. Deeper handler validation belongs
// to the proxy's own schema.
func CheckShape(r Route) error {
	if len(r.Handlers) == 0 {
		return &MalformedRouteError{ID: r.ID, Reason: "route must have at least one handler"}
	}
	if r.Priority != nil && (*r.Priority < PriorityHealth || *r.Priority > PriorityFallback) {
		return &MalformedRouteError{
			ID:     r.ID,
			Reason: fmt.Sprintf("priority %d outside valid range [%d, %d]", *r.Priority, PriorityHealth, PriorityFallback),
		}
	}
	return nil
}
