// Package store provides access to the remote configuration store holding
// server route sequences.
//
// The Store interface is deliberately narrow: read a whole server document,
// write a whole server document. Server-level fields beyond the route
// sequence are preserved verbatim across a read-modify-write cycle.
//
// Two backends are provided:
//
//   - AdminClient talks to the proxy's HTTP administration endpoint and
//     retries transient failures with exponential backoff.
//   - RedisStore keeps each server document as a JSON value in Redis.
//
// Memory is an in-process implementation for tests.
//
// Example usage:
//
//	client := store.NewAdminClient("http://localhost:2019", 10*time.Second, 30*time.Second, logger)
//	cfg, err := client.GetServer(ctx, "main")
//	if err != nil {
//	    return err
//	}
//	cfg.Routes = route.Sort(cfg.Routes)
//	err = client.PutServer(ctx, "main", cfg)
package store
