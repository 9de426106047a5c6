// Package manager implements the idempotent mutation operations over a
// remotely stored route sequence: add-if-absent, positional insert,
// replace-by-id, remove-by-id and full declarative sync.
//
// Each operation is a fresh read-modify-write round trip against the store;
// no-op outcomes (already present, id not found) are reported as booleans,
// not errors. A rejected mutation leaves the remote sequence completely
// unchanged: shape checks and ordering validation run before any write.
//
// Example usage:
//
//	m := manager.New(storeClient, logger)
//	added, err := m.AddRouteIfAbsent(ctx, "main", newRoute)
//	if err != nil {
//	    return err
//	}
//	if !added {
//	    logger.Info("route was already configured")
//	}
package manager
