// Package worker connects the address router to its channel streams.
//
// Each node consumes from the stream named after its own channel name. For
// every message the worker asks the router for the next hop and adds the
// envelope to the stream named by the returned channel; the messaging layer
// is nothing more than this channel-name-to-stream-key mapping. Messages
// whose destination is this node go to the delivered stream, and messages
// that cannot progress (invalid address, unreachable destination, policy
// denial) go to the dead-letter stream with the reason.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	r, _ := router.New(cfg.RouterAddress, router.WithLogger(logger))
//	p, _ := policy.New(nil, logger)
//
//	w := worker.NewWorker(cfg, redisClient, r, p, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, cfg.RouterAddress, redisClient, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
