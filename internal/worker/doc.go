// Package worker implements the mutation worker lifecycle and Redis Streams
// integration.
//
// The worker subscribes to a Redis stream of route mutation requests,
// applies them through the mutation manager, and publishes outcomes back on
// a result stream. Because the store offers no locking, funneling all
// mutations for a server through one consumer group is the supported way to
// serialize them.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	mgr := manager.New(storeClient, logger)
//
//	w := worker.NewWorker(cfg, redisClient, mgr, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - Mutation request parsing and dispatch
//   - Result and error publishing
//   - Graceful shutdown
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, storeClient, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
