// Package observability turns splash lifecycle events into Prometheus metrics
// and structured log lines.
package observability
