// Package metrics holds the Prometheus collectors for reply cycles, platform
// calls, and webhook deliveries, plus the optional /metrics HTTP endpoint.
package metrics
