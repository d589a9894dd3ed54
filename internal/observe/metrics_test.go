package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestStageDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStageDuration(ctx, "breakpoint_detector", 0.123)
	m.RecordStageDuration(ctx, "breakpoint_detector", 0.456)
	m.RecordStageDuration(ctx, "llm_scorer", 2.1)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.stage.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	if total != 3 {
		t.Errorf("total sample count = %d, want 3", total)
	}
}

func TestClipsPersistedCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordClipsPersisted(ctx, "42", 5)
	m.RecordClipsPersisted(ctx, "42", 2)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.clips.persisted")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 7 {
		t.Errorf("counter total = %d, want 7", total)
	}
}

func TestClipsSoftDeletedCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordClipsSoftDeleted(ctx, "42", 3)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.clips.soft_deleted")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	if len(sum.DataPoints) == 0 || sum.DataPoints[0].Value != 3 {
		t.Errorf("counter value mismatch, got %+v", sum.DataPoints)
	}
}

func TestLLMScorerDowngradesCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLLMScorerDowngrade(ctx, "provider_unavailable")
	m.RecordLLMScorerDowngrade(ctx, "provider_unavailable")
	m.RecordLLMScorerDowngrade(ctx, "disabled")

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.llm_scorer.downgrades")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == "reason" && kv.Value.AsString() == "provider_unavailable" {
				if dp.Value != 2 {
					t.Errorf("counter value = %d, want 2", dp.Value)
				}
				return
			}
		}
	}
	t.Error("data point with reason=provider_unavailable not found")
}

func TestLLMTokensUsedCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLLMTokens(ctx, "openai", 100, 40)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.llm.tokens_used")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	foundPrompt, foundCompletion := false, false
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == "kind" {
				switch kv.Value.AsString() {
				case "prompt":
					foundPrompt = dp.Value == 100
				case "completion":
					foundCompletion = dp.Value == 40
				}
			}
		}
	}
	if !foundPrompt {
		t.Error("expected prompt token data point with value 100")
	}
	if !foundCompletion {
		t.Error("expected completion token data point with value 40")
	}
}

func TestLLMEstimatedCostCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLLMCost(ctx, "openai", 0.0042)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.llm.estimated_cost_usd")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[float64])
	if !ok {
		t.Fatal("metric is not a float sum")
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if got := sum.DataPoints[0].Value; got < 0.0041 || got > 0.0043 {
		t.Errorf("cost value = %v, want ~0.0042", got)
	}
}

func TestSuggestClipsRunsInFlightGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.SuggestClipsRunsInFlight.Add(ctx, 1)
	m.SuggestClipsRunsInFlight.Add(ctx, 1)
	m.SuggestClipsRunsInFlight.Add(ctx, -1)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.runs.in_flight")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	if len(sum.DataPoints) == 0 || sum.DataPoints[0].Value != 1 {
		t.Errorf("gauge value mismatch, got %+v", sum.DataPoints)
	}
}

func TestHTTPRequestDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.HTTPRequestDuration.Record(ctx, 0.05,
		metric.WithAttributes(
			attribute.String("method", "GET"),
			attribute.String("path", "/healthz"),
		),
	)

	rm := collect(t, reader)
	met := findMetric(rm, "clipsuggest.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if got := hist.DataPoints[0].Count; got != 1 {
		t.Errorf("sample count = %d, want 1", got)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	// DefaultMetrics uses the global OTel provider so we just check
	// that repeated calls return the same pointer.
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}
