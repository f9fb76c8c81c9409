// Package health reports whether cache backends can serve.
//
// A Checker reports a Status: Healthy, Degraded or Unhealthy. Remote
// backends implement PingChecker; a bounded in-process cache is watched by a
// CapacityChecker. An Aggregator runs many checkers concurrently and the
// HTTP handlers expose the outcome to orchestrators:
//
//	agg := health.NewAggregator(0)
//	agg.Register(memory.Checker(health.CapacityCheckerConfig{}))
//	agg.Register(redisCache)
//	health.RegisterHandlers(mux, agg)
//
// Health never changes cache behaviour. A backend reported unhealthy keeps
// answering with misses.
package health
