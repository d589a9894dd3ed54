package clipengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sermonforge/clipsuggest/internal/clipengine/semantictype"
	"github.com/sermonforge/clipsuggest/internal/observe"
	"github.com/sermonforge/clipsuggest/internal/resilience"
	"github.com/sermonforge/clipsuggest/pkg/provider/llm"
)

// MethodRescore is the default LLM scoring strategy: every shortlisted
// candidate is sent for independent scoring and blended with its heuristic
// score by the Score Fuser.
const MethodRescore = "rescore"

// MethodSelectBest skips the Score Fuser and ranks shortlisted candidates
// directly by the LLM's own score, on the theory that a single comparative
// pass already expresses the model's ranking.
const MethodSelectBest = "select_best"

// Engine runs the clip suggestion pipeline against a sermon's transcript.
// It is safe for concurrent use; SuggestClips may be called from multiple
// goroutines for different sermons simultaneously.
type Engine struct {
	transcripts TranscriptStore
	embeddings  EmbeddingStore
	clips       ClipStore

	llmProvider     llm.Provider
	llmProviderName string
	llmBreaker      *resilience.CircuitBreaker
	classifier      *semantictype.Classifier

	metrics *observe.Metrics
	config  Config
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithLLM configures the LLM scorer's provider, a name used to tag metrics
// (e.g. "openai", "anyllm"), and the circuit breaker that wraps every
// outbound call. If never called, the LLM scorer stage is always skipped
// and candidates are scored heuristically only.
func WithLLM(provider llm.Provider, name string, breaker *resilience.CircuitBreaker) Option {
	return func(e *Engine) {
		e.llmProvider = provider
		e.llmProviderName = name
		e.llmBreaker = breaker
	}
}

// WithSemanticClassifier configures the narrative-role classifier used by
// the Semantic Classifier stage. If nil, that stage is skipped.
func WithSemanticClassifier(c *semantictype.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithMetrics overrides the [observe.Metrics] instance used to record
// pipeline telemetry. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithConfig overrides the pipeline's tunable thresholds. Defaults to
// [DefaultConfig].
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// New constructs an Engine backed by the given persistence adapters. Options
// configure the optional LLM scorer, semantic classifier, metrics, and
// threshold overrides.
func New(transcripts TranscriptStore, embeddings EmbeddingStore, clips ClipStore, opts ...Option) *Engine {
	e := &Engine{
		transcripts:     transcripts,
		embeddings:      embeddings,
		clips:           clips,
		llmProviderName: "unknown",
		metrics:         observe.DefaultMetrics(),
		config:          DefaultConfig(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SuggestClips runs the full pipeline for sermonID: loads the transcript,
// detects breakpoints, builds and scores candidates, deduplicates, and
// persists the surviving suggestions.
//
// useLLM overrides the engine's configured default when non-nil. llmMethod
// selects between [MethodRescore] (default, used when empty) and
// [MethodSelectBest].
//
// Returns a [Result] with Deleted=true (and no mutation performed) if the
// sermon was soft-deleted at any point during execution, matching the
// concurrent-deletion contract.
func (e *Engine) SuggestClips(ctx context.Context, sermonID int64, useLLM *bool, llmMethod string) (Result, error) {
	if llmMethod == "" {
		llmMethod = MethodRescore
	}

	e.metrics.SuggestClipsRunsInFlight.Add(ctx, 1)
	defer e.metrics.SuggestClipsRunsInFlight.Add(ctx, -1)

	sermon, err := e.transcripts.LoadSermon(ctx, sermonID)
	if err != nil {
		return Result{}, fmt.Errorf("clipengine: suggest clips: %w", err)
	}
	if sermon.Deleted() {
		return Result{SermonID: sermonID, Deleted: true}, nil
	}

	segments, err := e.timedLoadTranscript(ctx, sermonID)
	if err != nil {
		return Result{}, e.fail(ctx, sermonID, err)
	}

	complete, err := e.timedAttachEmbeddings(ctx, segments)
	if err != nil {
		return Result{}, e.fail(ctx, sermonID, err)
	}

	breakpoints := e.timedDetectBreakpoints(segments, complete)

	candidates, err := e.timedBuildCandidates(segments, breakpoints)
	if err != nil {
		return Result{}, e.fail(ctx, sermonID, err)
	}

	e.timedScoreHeuristic(segments, candidates)

	if complete {
		if err := e.timedClassifySemanticTypes(ctx, segments, candidates); err != nil {
			return Result{}, e.fail(ctx, sermonID, err)
		}
	}

	shouldUseLLM := e.config.UseLLMForClipSuggestions
	if useLLM != nil {
		shouldUseLLM = *useLLM
	}

	llmSucceeded := false
	if shouldUseLLM && e.llmProvider != nil {
		llmSucceeded = e.timedScoreWithLLM(ctx, segments, candidates)
	} else if shouldUseLLM {
		e.metrics.RecordLLMScorerDowngrade(ctx, "no_provider_configured")
	}

	if llmSucceeded {
		for i := range candidates {
			applyTrim(segments, &candidates[i], e.config)
		}
	}

	if llmSucceeded && llmMethod == MethodSelectBest {
		for i := range candidates {
			if candidates[i].LLMScore != nil {
				candidates[i].FusedScore = *candidates[i].LLMScore
				if candidates[i].LLMReason != "" {
					candidates[i].Rationale = candidates[i].LLMReason
				}
			}
		}
	} else {
		fuseScores(candidates)
	}

	start := time.Now()
	surviving := dedupeOverlap(candidates, e.config)
	surviving = dedupeSemantic(surviving, e.config)
	e.metrics.RecordStageDuration(ctx, "deduper", time.Since(start).Seconds())

	sermon, err = e.transcripts.LoadSermon(ctx, sermonID)
	if err != nil {
		return Result{}, fmt.Errorf("clipengine: suggest clips: %w", err)
	}
	if sermon.Deleted() {
		return Result{SermonID: sermonID, Deleted: true}, nil
	}

	start = time.Now()
	softDeleted, inserted, err := persistSuggestions(ctx, e.clips, sermonID, surviving, llmSucceeded)
	e.metrics.RecordStageDuration(ctx, "persistence", time.Since(start).Seconds())
	if err != nil {
		return Result{}, e.fail(ctx, sermonID, fmt.Errorf("clipengine: persistence: %w", err))
	}

	sermonIDStr := fmt.Sprintf("%d", sermonID)
	e.metrics.RecordClipsPersisted(ctx, sermonIDStr, int64(inserted))
	e.metrics.RecordClipsSoftDeleted(ctx, sermonIDStr, int64(softDeleted))

	return Result{SermonID: sermonID, Suggestions: inserted}, nil
}

// fail records a terminal failure on the sermon row (truncating the message
// to 1000 bytes) and returns err unchanged for the caller's retry/failure
// fabric to classify. It never overwrites a status with "error" when the
// failure is [ErrLLMUnavailable], since that class is recovered in place and
// never reaches this path.
func (e *Engine) fail(ctx context.Context, sermonID int64, err error) error {
	if errors.Is(err, ErrSermonDeleted) {
		return err
	}
	msg := err.Error()
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	if markErr := e.clips.MarkError(ctx, sermonID, msg); markErr != nil {
		return fmt.Errorf("%w (mark error also failed: %v)", err, markErr)
	}
	return err
}

func (e *Engine) timedLoadTranscript(ctx context.Context, sermonID int64) ([]TranscriptSegment, error) {
	start := time.Now()
	segments, err := loadTranscript(ctx, e.transcripts, sermonID)
	e.metrics.RecordStageDuration(ctx, "transcript_loader", time.Since(start).Seconds())
	return segments, err
}

func (e *Engine) timedAttachEmbeddings(ctx context.Context, segments []TranscriptSegment) (bool, error) {
	start := time.Now()
	complete, err := attachEmbeddings(ctx, e.embeddings, segments)
	e.metrics.RecordStageDuration(ctx, "embedding_attacher", time.Since(start).Seconds())
	return complete, err
}

func (e *Engine) timedDetectBreakpoints(segments []TranscriptSegment, embeddingsComplete bool) []int {
	start := time.Now()
	cfg := e.config
	if !embeddingsComplete {
		cfg.SemanticBreakpointSimilarity = -1 // disables the similarity rule when embeddings are partial
	}
	breakpoints := detectBreakpoints(segments, cfg)
	e.metrics.RecordStageDuration(context.Background(), "breakpoint_detector", time.Since(start).Seconds())
	return breakpoints
}

func (e *Engine) timedBuildCandidates(segments []TranscriptSegment, breakpoints []int) ([]Candidate, error) {
	start := time.Now()
	candidates, err := buildCandidates(segments, breakpoints, e.config)
	e.metrics.RecordStageDuration(context.Background(), "candidate_builder", time.Since(start).Seconds())
	return candidates, err
}

func (e *Engine) timedScoreHeuristic(segments []TranscriptSegment, candidates []Candidate) {
	start := time.Now()
	for i := range candidates {
		scoreHeuristic(segments, &candidates[i])
	}
	e.metrics.RecordStageDuration(context.Background(), "heuristic_scorer", time.Since(start).Seconds())
}

func (e *Engine) timedClassifySemanticTypes(ctx context.Context, segments []TranscriptSegment, candidates []Candidate) error {
	start := time.Now()
	err := classifySemanticTypes(ctx, segments, candidates, e.config, e.classifier)
	e.metrics.RecordStageDuration(ctx, "semantic_classifier", time.Since(start).Seconds())
	return err
}

// timedScoreWithLLM runs the LLM scorer through the configured circuit
// breaker, recording token usage and cost on success. On any failure it
// records a downgrade metric and returns false; the caller must continue
// with heuristic-only scoring.
func (e *Engine) timedScoreWithLLM(ctx context.Context, segments []TranscriptSegment, candidates []Candidate) bool {
	start := time.Now()

	var usage llm.Usage
	run := func() error {
		var err error
		usage, err = scoreWithLLM(ctx, segments, candidates, e.config, e.llmProvider)
		return err
	}

	var err error
	if e.llmBreaker != nil {
		err = e.llmBreaker.Execute(run)
	} else {
		err = run()
	}

	e.metrics.RecordStageDuration(ctx, "llm_scorer", time.Since(start).Seconds())

	if err != nil {
		reason := "provider_unavailable"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			reason = "circuit_open"
		}
		slog.Warn("llm scorer failed, continuing with heuristic scores", "reason", reason, "err", err)
		e.metrics.RecordLLMScorerDowngrade(ctx, reason)
		return false
	}

	e.metrics.RecordLLMTokens(ctx, e.llmProviderName, int64(usage.PromptTokens), int64(usage.CompletionTokens))
	e.metrics.RecordLLMCost(ctx, e.llmProviderName, estimateLLMCostUSD(usage))
	return true
}
