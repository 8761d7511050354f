package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace prefixed to every metric name.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithInstance labels every series with instance=name, so several lineup
// processes can share one Prometheus job. An empty name adds no label.
func WithInstance(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.constLabels = prometheus.Labels{"instance": name}
		}
	}
}

// WithPrometheusRegistry registers the metrics on registry instead of the
// package registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
