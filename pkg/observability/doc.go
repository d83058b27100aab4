/*
Package observability turns machine lifecycle hooks into Prometheus metrics
and structured log records.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
	m := choicefsm.New[string, string, string](choicefsm.WithLifecycleHooks(hooks))
*/
package observability
