package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/routeward/routeward/internal/route"
)

// ServerConfig is one server's configuration document: the ordered route
// sequence plus every other server-level field. The other fields are not
// interpreted here and must survive a read-modify-write cycle verbatim; a
// partial write that drops them is a defect.
type ServerConfig struct {
	Routes []route.Route

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the server document, keeping unknown fields aside so
// PutServer writes them back unchanged.
func (c *ServerConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal server config: %w", err)
	}

	*c = ServerConfig{}
	for key, val := range raw {
		if key == "routes" {
			if err := json.Unmarshal(val, &c.Routes); err != nil {
				return fmt.Errorf("failed to unmarshal routes: %w", err)
			}
			continue
		}
		if c.extra == nil {
			c.extra = make(map[string]json.RawMessage)
		}
		c.extra[key] = val
	}

	return nil
}

// MarshalJSON encodes the full server document, merging back the preserved
// server-level fields.
func (c ServerConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.extra)+1)
	for key, val := range c.extra {
		out[key] = val
	}
	if c.Routes == nil {
		out["routes"] = []route.Route{}
	} else {
		out["routes"] = c.Routes
	}
	return json.Marshal(out)
}

// Store reads and writes whole server configuration documents in a remote
// configuration store. The store is the sole source of truth: callers read
// fresh before each mutation and write the complete document back.
//
// Each mutation is an independent read-modify-write round trip. Two callers
// racing on the same server name are not detected; the later write wins.
// Callers needing strict consistency serialize their own mutations per
// server, for example through the stream worker.
type Store interface {
	// GetServer returns the server's configuration document. The error
	// satisfies errors.As with *NotFoundError when no document exists.
	GetServer(ctx context.Context, name string) (*ServerConfig, error)

	// PutServer replaces the server's configuration document as a whole.
	PutServer(ctx context.Context, name string, cfg *ServerConfig) error
}

// NotFoundError reports a server name the store holds no document for.
type NotFoundError struct {
	Server string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("server %q not found", e.Server)
}
