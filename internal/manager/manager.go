package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/routeward/routeward/internal/route"
	"github.com/routeward/routeward/internal/store"
)

// Manager applies idempotent mutations to a server's route sequence through
// a Store. Every operation performs a fresh read of the remote document,
// applies one change, and writes the whole document back; nothing is cached
// between calls and no lock is taken. Two concurrent callers mutating the
// same server race, last write wins; callers needing strict consistency
// serialize their mutations per server.
type Manager struct {
	store  store.Store
	logger *zap.Logger
}

// New creates a manager over the given store.
func New(s store.Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:  s,
		logger: logger,
	}
}

// AddRouteIfAbsent appends r unless an equivalent route already exists. Two
// routes are equivalent when their first matcher groups carry identical host
// and path sets, compared as ordered values; method, header, query and the
// id play no part. Returns false without writing when the route exists.
func (m *Manager) AddRouteIfAbsent(ctx context.Context, server string, r route.Route) (bool, error) {
	if err := route.CheckShape(r); err != nil {
		return false, err
	}
	opID := uuid.NewString()

	cfg, err := m.store.GetServer(ctx, server)
	if err != nil {
		return false, fmt.Errorf("failed to read server %q: %w", server, err)
	}

	if idx := findEquivalent(cfg.Routes, r); idx >= 0 {
		m.logger.Info("route already present, not added",
			zap.String("op_id", opID),
			zap.String("server", server),
			zap.String("route_id", r.ID),
			zap.Int("existing_index", idx),
		)
		return false, nil
	}

	cfg.Routes = append(slices.Clone(cfg.Routes), r)
	if err := m.store.PutServer(ctx, server, cfg); err != nil {
		return false, fmt.Errorf("failed to write server %q: %w", server, err)
	}

	m.logger.Info("route added",
		zap.String("op_id", opID),
		zap.String("server", server),
		zap.String("route_id", r.ID),
		zap.Int("routes", len(cfg.Routes)),
	)
	return true, nil
}

// InsertRoute splices r into the server's sequence at the selected position
// and writes the full document back. PositionAfterHealthChecks resolves
// against the live sequence; the other placements behave as
// route.InsertRelative.
func (m *Manager) InsertRoute(ctx context.Context, server string, r route.Route, opts route.InsertOptions) error {
	if err := route.CheckShape(r); err != nil {
		return err
	}
	opID := uuid.NewString()

	cfg, err := m.store.GetServer(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to read server %q: %w", server, err)
	}

	var updated []route.Route
	if opts.BeforeID == "" && opts.AfterID == "" && opts.Position == route.PositionAfterHealthChecks {
		idx := afterHealthChecksIndex(cfg.Routes)
		updated = make([]route.Route, 0, len(cfg.Routes)+1)
		updated = append(updated, cfg.Routes[:idx]...)
		updated = append(updated, r)
		updated = append(updated, cfg.Routes[idx:]...)
	} else {
		updated, err = route.InsertRelative(cfg.Routes, r, opts)
		if err != nil {
			return err
		}
	}

	cfg.Routes = updated
	if err := m.store.PutServer(ctx, server, cfg); err != nil {
		return fmt.Errorf("failed to write server %q: %w", server, err)
	}

	m.logger.Info("route inserted",
		zap.String("op_id", opID),
		zap.String("server", server),
		zap.String("route_id", r.ID),
		zap.String("position", string(opts.Position)),
		zap.String("before_id", opts.BeforeID),
		zap.String("after_id", opts.AfterID),
	)
	return nil
}

// ReplaceRouteByID replaces the first route whose id matches with r. The
// target id is force-preserved: whatever id r carries is discarded. Returns
// false without writing when no route matches; duplicates beyond the first
// are left untouched.
func (m *Manager) ReplaceRouteByID(ctx context.Context, server, id string, r route.Route) (bool, error) {
	if err := route.CheckShape(r); err != nil {
		return false, err
	}
	opID := uuid.NewString()

	cfg, err := m.store.GetServer(ctx, server)
	if err != nil {
		return false, fmt.Errorf("failed to read server %q: %w", server, err)
	}

	for i := range cfg.Routes {
		if cfg.Routes[i].ID != id {
			continue
		}

		replacement := r
		replacement.ID = id
		updated := slices.Clone(cfg.Routes)
		updated[i] = replacement
		cfg.Routes = updated

		if err := m.store.PutServer(ctx, server, cfg); err != nil {
			return false, fmt.Errorf("failed to write server %q: %w", server, err)
		}

		m.logger.Info("route replaced",
			zap.String("op_id", opID),
			zap.String("server", server),
			zap.String("route_id", id),
			zap.Int("index", i),
		)
		return true, nil
	}

	m.logger.Info("route not found, not replaced",
		zap.String("op_id", opID),
		zap.String("server", server),
		zap.String("route_id", id),
	)
	return false, nil
}

// RemoveRouteByID removes every route whose id matches. Duplicate ids are a
// caller error but must not corrupt state, so removal is plural. Returns
// false without writing when nothing matches.
func (m *Manager) RemoveRouteByID(ctx context.Context, server, id string) (bool, error) {
	opID := uuid.NewString()

	cfg, err := m.store.GetServer(ctx, server)
	if err != nil {
		return false, fmt.Errorf("failed to read server %q: %w", server, err)
	}

	filtered := make([]route.Route, 0, len(cfg.Routes))
	for _, r := range cfg.Routes {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	removed := len(cfg.Routes) - len(filtered)
	if removed == 0 {
		m.logger.Info("route not found, not removed",
			zap.String("op_id", opID),
			zap.String("server", server),
			zap.String("route_id", id),
		)
		return false, nil
	}

	cfg.Routes = filtered
	if err := m.store.PutServer(ctx, server, cfg); err != nil {
		return false, fmt.Errorf("failed to write server %q: %w", server, err)
	}

	m.logger.Info("route removed",
		zap.String("op_id", opID),
		zap.String("server", server),
		zap.String("route_id", id),
		zap.Int("removed", removed),
	)
	return true, nil
}

// SyncRoutes replaces the server's whole route sequence with the sorted,
// validated form of routes, preserving the document's other fields. Nothing
// is written when a route is malformed or validation rejects the ordering.
// A server with no stored document yet starts from an empty one.
func (m *Manager) SyncRoutes(ctx context.Context, server string, routes []route.Route) error {
	for _, r := range routes {
		if err := route.CheckShape(r); err != nil {
			return err
		}
	}

	sorted := route.Sort(routes)
	if err := route.ValidateOrdering(sorted); err != nil {
		return err
	}
	opID := uuid.NewString()

	cfg, err := m.store.GetServer(ctx, server)
	if err != nil {
		var notFound *store.NotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read server %q: %w", server, err)
		}
		cfg = &store.ServerConfig{}
	}

	cfg.Routes = sorted
	if err := m.store.PutServer(ctx, server, cfg); err != nil {
		return fmt.Errorf("failed to write server %q: %w", server, err)
	}

	m.logger.Info("routes synced",
		zap.String("op_id", opID),
		zap.String("server", server),
		zap.Int("routes", len(sorted)),
	)
	return nil
}

// findEquivalent returns the index of the first route equivalent to
// candidate under the add-if-absent identity, or -1.
func findEquivalent(routes []route.Route, candidate route.Route) int {
	candHosts, candPaths := firstHostPath(candidate)
	for i, r := range routes {
		hosts, paths := firstHostPath(r)
		if slices.Equal(hosts, candHosts) && slices.Equal(paths, candPaths) {
			return i
		}
	}
	return -1
}

func firstHostPath(r route.Route) (hosts, paths []string) {
	if len(r.Matchers) == 0 {
		return nil, nil
	}
	return r.Matchers[0].Host, r.Matchers[0].Path
}

// afterHealthChecksIndex returns one past the last route whose first handler
// is the static content kind. Health probe routes are conventionally static
// responders, and the handler kind is the only identity signal that
// reliably survives serialization. With no such route the insertion lands
// at index 0.
func afterHealthChecksIndex(routes []route.Route) int {
	idx := 0
	for i, r := range routes {
		if len(r.Handlers) > 0 && r.Handlers[0].Kind() == route.StaticResponseKind {
			idx = i + 1
		}
	}
	return idx
}
