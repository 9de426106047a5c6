package routefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/routeward/routeward/internal/route"
)

// File is a declarative route set for one server.
type File struct {
	Server string `yaml:"server"`
	Routes []Spec `yaml:"routes"`
}

// Spec is one declarative route definition. Exactly one of Upstream, Static
// or Redirect selects the handler.
type Spec struct {
	ID       string   `yaml:"id,omitempty"`
	Hosts    []string `yaml:"hosts,omitempty"`
	Paths    []string `yaml:"paths,omitempty"`
	Methods  []string `yaml:"methods,omitempty"`
	Upstream string   `yaml:"upstream,omitempty"`
	Static   *Static  `yaml:"static,omitempty"`
	Redirect string   `yaml:"redirect,omitempty"`
	Priority *int     `yaml:"priority,omitempty"`
	Terminal *bool    `yaml:"terminal,omitempty"`
}

// Static describes a static response handler.
type Static struct {
	Status int    `yaml:"status,omitempty"`
	Body   string `yaml:"body,omitempty"`
}

// Load reads and parses a route file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse route file: %w", err)
	}

	if f.Server == "" {
		return nil, fmt.Errorf("route file missing server name")
	}
	for i, spec := range f.Routes {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}

	return &f, nil
}

func (s Spec) validate() error {
	handlers := 0
	if s.Upstream != "" {
		handlers++
	}
	if s.Static != nil {
		handlers++
	}
	if s.Redirect != "" {
		handlers++
	}
	if handlers != 1 {
		return fmt.Errorf("exactly one of upstream, static or redirect is required")
	}
	return nil
}

// Build compiles the declarative specs into wire routes.
func (f *File) Build() []route.Route {
	routes := make([]route.Route, len(f.Routes))
	for i, spec := range f.Routes {
		routes[i] = spec.build()
	}
	return routes
}

func (s Spec) build() route.Route {
	r := route.Route{
		ID:       s.ID,
		Priority: s.Priority,
		Terminal: s.Terminal,
	}

	if len(s.Hosts) > 0 || len(s.Paths) > 0 || len(s.Methods) > 0 {
		r.Matchers = []route.Match{{
			Host:   s.Hosts,
			Path:   s.Paths,
			Method: s.Methods,
		}}
	}

	switch {
	case s.Upstream != "":
		r.Handlers = []route.Handler{ReverseProxy(s.Upstream)}
	case s.Redirect != "":
		r.Handlers = []route.Handler{Redirect(s.Redirect)}
	case s.Static != nil:
		status := s.Static.Status
		if status == 0 {
			status = 200
		}
		r.Handlers = []route.Handler{StaticResponse(status, s.Static.Body)}
	}

	return r
}

// ReverseProxy returns a handler forwarding requests to the given upstream.
func ReverseProxy(upstream string) route.Handler {
	return route.Handler{
		"handler": "reverse_proxy",
		"upstreams": []interface{}{
			map[string]interface{}{"dial": upstream},
		},
	}
}

// StaticResponse returns a handler answering with a fixed status and body.
func StaticResponse(status int, body string) route.Handler {
	return route.Handler{
		"handler":     route.StaticResponseKind,
		"status_code": status,
		"body":        body,
	}
}

// Redirect returns a handler issuing a permanent redirect to location.
func Redirect(location string) route.Handler {
	return route.Handler{
		"handler":     route.StaticResponseKind,
		"status_code": 308,
		"headers": map[string]interface{}{
			"Location": []interface{}{location},
		},
	}
}

// HealthCheck returns the designated always-first liveness route.
func HealthCheck() route.Route {
	terminal := true
	return route.Route{
		ID: route.HealthCheckID,
		Matchers: []route.Match{{
			Path: []string{"/health"},
		}},
		Handlers: []route.Handler{StaticResponse(200, "OK")},
		Terminal: &terminal,
	}
}
