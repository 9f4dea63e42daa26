/*
Package observability turns builder lifecycle hooks into logs and Prometheus metrics.

Both are plain domain.LifecycleHooks, so they compose with any other hooks:

	metrics := observability.NewMetrics()
	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())
	b, _ := lattice.New(lattice.WithLifecycleHooks(hooks))
	http.Handle("/metrics", metrics.Handler())
*/
package observability
