// Package metrics records request and application metrics with Prometheus
// and pushes them to Graphite.
//
// Each Metrics value owns a private registry, so several applications can
// live in one process. The HTTP middleware labels requests by chi route
// pattern rather than raw path to keep cardinality bounded.
//
//	m := metrics.New(metrics.Config{AppName: "origami-build", APIKey: key})
//	r.Use(m.Middleware)
//	r.Handle("/__metrics", m.Handler())
//	go m.Run(ctx) // push to Graphite every 40s
//
// A nil *Metrics (see Nop) is a valid no-op: every method is safe to call.
package metrics
