package clipengine

// Config holds every tunable threshold the clip suggestion pipeline uses.
// It is populated from internal/config.ClipEngineConfig at worker startup;
// the clip engine itself has no dependency on the YAML configuration layer.
type Config struct {
	MinClipMS int
	MaxClipMS int

	LongGapMS  int
	StartGapMS int
	EndGapMS   int

	SemanticBreakpointSimilarity float64
	SemanticTypeMax              int
	SemanticDedupeMax            int
	SemanticDedupeSimilarity     float64
	OverlapDedupeRatio           float64

	MaxSuggestions   int
	LLMMaxCandidates int

	EmbeddingDimensions int

	UseLLMForClipSuggestions bool
}

// DefaultConfig returns the thresholds named throughout §4 of the pipeline's
// component design, matching the configuration schema's documented
// defaults.
func DefaultConfig() Config {
	return Config{
		MinClipMS:                   30000,
		MaxClipMS:                   120000,
		LongGapMS:                   1500,
		StartGapMS:                  500,
		EndGapMS:                    700,
		SemanticBreakpointSimilarity: 0.5,
		SemanticTypeMax:              200,
		SemanticDedupeMax:            200,
		SemanticDedupeSimilarity:     0.86,
		OverlapDedupeRatio:           0.6,
		MaxSuggestions:               15,
		LLMMaxCandidates:             15,
		EmbeddingDimensions:          384,
		UseLLMForClipSuggestions:     true,
	}
}
