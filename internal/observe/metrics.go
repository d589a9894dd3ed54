// Package observe provides application-wide observability primitives for the
// clip-suggestion worker: OpenTelemetry metric instruments and the SDK
// meter and tracer provider setup. It contains no logging or HTTP middleware;
// HTTPRequestDuration is an instrument only.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all worker metrics.
const meterName = "github.com/sermonforge/clipsuggest"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ClipEngineStageDuration tracks per-component latency within a single
	// SuggestClips run. Use with attribute:
	//   attribute.String("component", ...) — e.g. "breakpoint_detector", "llm_scorer"
	ClipEngineStageDuration metric.Float64Histogram

	// --- Counters ---

	// ClipsPersisted counts auto-suggested clips written by the persistence
	// stage. Use with attribute:
	//   attribute.String("sermon_id", ...)
	ClipsPersisted metric.Int64Counter

	// ClipsSoftDeleted counts prior auto-suggestions soft-deleted when a
	// sermon's suggestion set is regenerated.
	ClipsSoftDeleted metric.Int64Counter

	// LLMScorerDowngrades counts runs where the LLM scorer stage was skipped
	// or its result discarded in favor of the heuristic-only score, tagged by
	// reason. Use with attribute:
	//   attribute.String("reason", ...) — the engine emits "provider_unavailable",
	//   "circuit_open" and "no_provider_configured"
	LLMScorerDowngrades metric.Int64Counter

	// LLMTokensUsed counts prompt and completion tokens consumed by the LLM
	// scorer. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...) — "prompt"|"completion"
	LLMTokensUsed metric.Int64Counter

	// LLMEstimatedCostUSD accumulates the estimated dollar cost of LLM scorer
	// calls, computed from token counts at one fixed per-million-token rate for
	// prompt tokens and one for completion tokens, whatever the model. Use with
	// attribute:
	//   attribute.String("provider", ...)
	LLMEstimatedCostUSD metric.Float64Counter

	// --- Gauges ---

	// SuggestClipsRunsInFlight tracks the number of SuggestClips runs
	// currently executing.
	SuggestClipsRunsInFlight metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// per-stage pipeline latencies, which typically range from a few
// milliseconds (pure-Go stages) to tens of seconds (LLM scorer round trips).
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ClipEngineStageDuration, err = m.Float64Histogram("clipsuggest.stage.duration",
		metric.WithDescription("Latency of each clip-engine pipeline component."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ClipsPersisted, err = m.Int64Counter("clipsuggest.clips.persisted",
		metric.WithDescription("Total auto-suggested clips persisted."),
	); err != nil {
		return nil, err
	}
	if met.ClipsSoftDeleted, err = m.Int64Counter("clipsuggest.clips.soft_deleted",
		metric.WithDescription("Total prior auto-suggestions soft-deleted on regeneration."),
	); err != nil {
		return nil, err
	}
	if met.LLMScorerDowngrades, err = m.Int64Counter("clipsuggest.llm_scorer.downgrades",
		metric.WithDescription("Total runs that fell back to heuristic-only scoring, by reason."),
	); err != nil {
		return nil, err
	}
	if met.LLMTokensUsed, err = m.Int64Counter("clipsuggest.llm.tokens_used",
		metric.WithDescription("Total LLM tokens consumed by the scorer, by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.LLMEstimatedCostUSD, err = m.Float64Counter("clipsuggest.llm.estimated_cost_usd",
		metric.WithDescription("Estimated USD cost of LLM scorer calls, by provider."),
	); err != nil {
		return nil, err
	}

	if met.SuggestClipsRunsInFlight, err = m.Int64UpDownCounter("clipsuggest.runs.in_flight",
		metric.WithDescription("Number of SuggestClips runs currently executing."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("clipsuggest.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordStageDuration is a convenience method that records a pipeline
// component's duration in seconds.
func (m *Metrics) RecordStageDuration(ctx context.Context, component string, seconds float64) {
	m.ClipEngineStageDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("component", component)),
	)
}

// RecordClipsPersisted is a convenience method that increments the clips
// persisted counter for a sermon.
func (m *Metrics) RecordClipsPersisted(ctx context.Context, sermonID string, n int64) {
	m.ClipsPersisted.Add(ctx, n,
		metric.WithAttributes(attribute.String("sermon_id", sermonID)),
	)
}

// RecordClipsSoftDeleted is a convenience method that increments the
// soft-deleted clips counter for a sermon.
func (m *Metrics) RecordClipsSoftDeleted(ctx context.Context, sermonID string, n int64) {
	m.ClipsSoftDeleted.Add(ctx, n,
		metric.WithAttributes(attribute.String("sermon_id", sermonID)),
	)
}

// RecordLLMScorerDowngrade is a convenience method that records a run falling
// back to heuristic-only scoring.
func (m *Metrics) RecordLLMScorerDowngrade(ctx context.Context, reason string) {
	m.LLMScorerDowngrades.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordLLMTokens is a convenience method that records prompt and completion
// token usage for a single LLM scorer call.
func (m *Metrics) RecordLLMTokens(ctx context.Context, provider string, promptTokens, completionTokens int64) {
	m.LLMTokensUsed.Add(ctx, promptTokens,
		metric.WithAttributes(attribute.String("provider", provider), attribute.String("kind", "prompt")),
	)
	m.LLMTokensUsed.Add(ctx, completionTokens,
		metric.WithAttributes(attribute.String("provider", provider), attribute.String("kind", "completion")),
	)
}

// RecordLLMCost is a convenience method that records the estimated USD cost
// of a single LLM scorer call.
func (m *Metrics) RecordLLMCost(ctx context.Context, provider string, usd float64) {
	m.LLMEstimatedCostUSD.Add(ctx, usd,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}
