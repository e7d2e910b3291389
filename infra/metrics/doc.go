// Package metrics adapts register events to Prometheus.
package metrics
