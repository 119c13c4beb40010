package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricCatalogFreshness = "catalog.data_age_seconds"
	MetricVocabFreshness   = "suggestions.vocab_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSearches    = "business.searches_served"
	MetricSuperseded  = "business.evaluations_superseded"
	MetricSuggestions = "business.suggestions_served"
)
