// Command clipsuggestd is the worker entry point for the sermon clip
// suggestion engine. It loads configuration, wires up the LLM and embeddings
// providers, the PostgreSQL store, and observability, then serves HTTP
// health/readiness probes while processing suggest-clip requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/sermonforge/clipsuggest/internal/clipengine"
	"github.com/sermonforge/clipsuggest/internal/clipengine/semantictype"
	"github.com/sermonforge/clipsuggest/internal/config"
	"github.com/sermonforge/clipsuggest/internal/health"
	"github.com/sermonforge/clipsuggest/internal/observe"
	"github.com/sermonforge/clipsuggest/internal/resilience"
	"github.com/sermonforge/clipsuggest/pkg/provider/embeddings"
	embeddingsollama "github.com/sermonforge/clipsuggest/pkg/provider/embeddings/ollama"
	embeddingsopenai "github.com/sermonforge/clipsuggest/pkg/provider/embeddings/openai"
	"github.com/sermonforge/clipsuggest/pkg/provider/llm"
	"github.com/sermonforge/clipsuggest/pkg/provider/llm/anyllm"
	llmopenai "github.com/sermonforge/clipsuggest/pkg/provider/llm/openai"
	"github.com/sermonforge/clipsuggest/pkg/store/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	listenAddr := flag.String("listen-addr", ":8080", "address for the health/metrics HTTP server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "clipsuggestd: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "clipsuggestd: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)
	slog.Info("clipsuggestd starting", "config", *configPath, "listen_addr", *listenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise observability provider", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Error("observability shutdown error", "err", err)
		}
	}()

	store, err := postgres.NewStore(ctx, cfg.Storage.PostgresDSN, cfg.ClipEngine.EmbeddingDimensions)
	if err != nil {
		slog.Error("failed to initialise postgres store", "err", err)
		return 1
	}
	defer store.Close()

	llmProvider, llmProviderName, err := buildLLMProvider(cfg.LLM)
	if err != nil {
		slog.Error("failed to build llm provider", "err", err)
		return 1
	}

	embeddingsProvider, err := buildEmbeddingsProvider(cfg.Embeddings)
	if err != nil {
		slog.Error("failed to build embeddings provider", "err", err)
		return 1
	}

	var classifier *semantictype.Classifier
	if embeddingsProvider != nil {
		classifier = semantictype.NewClassifier(embeddingsProvider)
	}

	engineCfg := clipengine.Config{
		MinClipMS:                    cfg.ClipEngine.MinClipMS,
		MaxClipMS:                    cfg.ClipEngine.MaxClipMS,
		LongGapMS:                    cfg.ClipEngine.LongGapMS,
		StartGapMS:                   cfg.ClipEngine.StartGapMS,
		EndGapMS:                     cfg.ClipEngine.EndGapMS,
		SemanticBreakpointSimilarity: cfg.ClipEngine.SemanticBreakpointSimilarity,
		SemanticTypeMax:              cfg.ClipEngine.SemanticTypeMax,
		SemanticDedupeMax:            cfg.ClipEngine.SemanticDedupeMax,
		SemanticDedupeSimilarity:     cfg.ClipEngine.SemanticDedupeSimilarity,
		OverlapDedupeRatio:           cfg.ClipEngine.OverlapDedupeRatio,
		MaxSuggestions:               cfg.ClipEngine.MaxSuggestions,
		LLMMaxCandidates:             cfg.ClipEngine.LLMMaxCandidates,
		EmbeddingDimensions:          cfg.ClipEngine.EmbeddingDimensions,
		UseLLMForClipSuggestions:     cfg.ClipEngine.UseLLMForClipSuggestions,
	}

	opts := []clipengine.Option{
		clipengine.WithConfig(engineCfg),
		clipengine.WithMetrics(observe.DefaultMetrics()),
	}
	if llmProvider != nil {
		llmBreaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: llmProviderName, MaxFailures: 5, ResetTimeout: 30 * time.Second,
		})
		opts = append(opts, clipengine.WithLLM(llmProvider, llmProviderName, llmBreaker))
	}
	if classifier != nil {
		opts = append(opts, clipengine.WithSemanticClassifier(classifier))
	}

	engine := clipengine.New(store, store, store, opts...)

	backoff := resilience.BackoffPolicy{
		Base:   float64(cfg.Retry.CeleryRetryBackoffBase),
		Max:    float64(cfg.Retry.CeleryRetryBackoffMax),
		Jitter: float64(cfg.Retry.CeleryRetryJitter),
	}

	worker := &suggestWorker{
		engine:      engine,
		maxRetries:  cfg.Retry.CeleryMaxRetries,
		backoff:     backoff,
		metrics:     observe.DefaultMetrics(),
	}
	_ = worker // wired to the broker-consumer loop once a queue integration lands

	healthChecker := health.New(health.Checker{
		Name: "postgres",
		Check: func(checkCtx context.Context) error {
			_, err := store.LoadSermon(checkCtx, 0)
			if err != nil && !errors.Is(err, clipengine.ErrSermonNotFound) {
				return err
			}
			return nil
		},
	})

	mux := http.NewServeMux()
	healthChecker.Register(mux)

	httpServer := &http.Server{Addr: *listenAddr, Handler: mux}
	go func() {
		slog.Info("health server listening", "addr", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("health server error", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("health server shutdown error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// suggestWorker wraps an [clipengine.Engine] with the retry/failure fabric's
// backoff policy, ready to be driven by a message-broker consumer loop. The
// broker integration itself is out of scope (§1); this type
// documents and holds the pieces that loop will need.
type suggestWorker struct {
	engine     *clipengine.Engine
	maxRetries int
	backoff    resilience.BackoffPolicy
	metrics    *observe.Metrics
}

// processOnce runs a single suggest-clips attempt and classifies any failure
// via [resilience.Classify], matching §4.13's retry/failure fabric.
func (w *suggestWorker) processOnce(ctx context.Context, sermonID int64, useLLM *bool, llmMethod string) (clipengine.Result, resilience.Classification, error) {
	result, err := w.engine.SuggestClips(ctx, sermonID, useLLM, llmMethod)
	if err != nil {
		return clipengine.Result{}, resilience.Classify(err), err
	}
	return result, resilience.Terminal, nil
}

func buildLLMProvider(cfg config.LLMConfig) (llm.Provider, string, error) {
	if cfg.Provider == "" {
		return nil, "", nil
	}

	var primary llm.Provider
	var err error
	switch cfg.Provider {
	case "openai":
		opts := []llmopenai.Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.RequestTimeout > 0 {
			opts = append(opts, llmopenai.WithTimeout(cfg.RequestTimeout))
		}
		primary, err = llmopenai.New(cfg.APIKey, cfg.Model, opts...)
	case "anyllm":
		// No dedicated backend field exists for the primary leg (unlike
		// Fallback.Backend); anyllm is only meant as a fallback wrapper, so a
		// primary configured this way always bridges through its OpenAI
		// backend.
		var anyOpts []anyllmlib.Option
		if cfg.APIKey != "" {
			anyOpts = append(anyOpts, anyllmlib.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			anyOpts = append(anyOpts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		primary, err = anyllm.NewOpenAI(cfg.Model, anyOpts...)
	default:
		return nil, "", fmt.Errorf("clipsuggestd: unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, "", fmt.Errorf("clipsuggestd: build llm provider %q: %w", cfg.Provider, err)
	}

	if cfg.Fallback == nil {
		return primary, cfg.Provider, nil
	}

	fallback, err := buildLLMFallbackBackend(*cfg.Fallback)
	if err != nil {
		return nil, "", fmt.Errorf("clipsuggestd: build llm fallback: %w", err)
	}

	group := resilience.NewLLMFallback(primary, cfg.Provider, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 5, ResetTimeout: 30 * time.Second},
	})
	group.AddFallback(cfg.Fallback.Backend, fallback)

	return group, cfg.Provider + "+" + cfg.Fallback.Backend, nil
}

func buildLLMFallbackBackend(cfg config.LLMFallbackConfig) (llm.Provider, error) {
	var opts []anyllmlib.Option
	if cfg.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
	}

	switch cfg.Backend {
	case "anthropic":
		return anyllm.NewAnthropic(cfg.Model, opts...)
	case "gemini":
		return anyllm.NewGemini(cfg.Model, opts...)
	case "ollama":
		return anyllm.NewOllama(cfg.Model, opts...)
	case "deepseek":
		return anyllm.NewDeepSeek(cfg.Model, opts...)
	case "mistral":
		return anyllm.NewMistral(cfg.Model, opts...)
	case "groq":
		return anyllm.NewGroq(cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("clipsuggestd: unknown llm fallback backend %q", cfg.Backend)
	}
}

func buildEmbeddingsProvider(cfg config.EmbeddingsConfig) (embeddings.Provider, error) {
	if cfg.Provider == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "openai":
		return embeddingsopenai.New(cfg.APIKey, cfg.Model)
	case "ollama":
		return embeddingsollama.New(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("clipsuggestd: unknown embeddings provider %q", cfg.Provider)
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
