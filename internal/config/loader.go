package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":          {"openai", "anyllm"},
	"llm_fallback": {"anyllm"},
	"llm_backend":  {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"embeddings":   {"openai", "ollama"},
}

// modelDimensions reports the known embedding dimension for well-known model
// names, used only to cross-check clip_engine.embedding_dimensions at load
// time. Returns 0 for unrecognised models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills in zero-valued fields that the clip engine requires to
// have a sane default rather than an explicit zero.
func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogLevelInfo
	}
	if cfg.ClipEngine.EmbeddingDimensions == 0 {
		cfg.ClipEngine.EmbeddingDimensions = 384
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	validateProviderName("llm", cfg.LLM.Provider)
	validateProviderName("embeddings", cfg.Embeddings.Provider)
	if cfg.LLM.Fallback != nil {
		validateProviderName("llm_fallback", cfg.LLM.Fallback.Provider)
		validateProviderName("llm_backend", cfg.LLM.Fallback.Backend)
	}

	ce := cfg.ClipEngine
	if ce.MinClipMS > 0 && ce.MaxClipMS > 0 && ce.MinClipMS >= ce.MaxClipMS {
		errs = append(errs, fmt.Errorf("clip_engine.min_clip_ms (%d) must be less than max_clip_ms (%d)", ce.MinClipMS, ce.MaxClipMS))
	}
	if ce.SemanticBreakpointSimilarity < 0 || ce.SemanticBreakpointSimilarity > 1 {
		errs = append(errs, fmt.Errorf("clip_engine.semantic_breakpoint_similarity %.2f must be in [0, 1]", ce.SemanticBreakpointSimilarity))
	}
	if ce.SemanticDedupeSimilarity < 0 || ce.SemanticDedupeSimilarity > 1 {
		errs = append(errs, fmt.Errorf("clip_engine.semantic_dedupe_similarity %.2f must be in [0, 1]", ce.SemanticDedupeSimilarity))
	}
	if ce.OverlapDedupeRatio < 0 || ce.OverlapDedupeRatio > 1 {
		errs = append(errs, fmt.Errorf("clip_engine.overlap_dedupe_ratio %.2f must be in [0, 1]", ce.OverlapDedupeRatio))
	}
	if ce.EmbeddingDimensions <= 0 {
		errs = append(errs, fmt.Errorf("clip_engine.embedding_dimensions must be positive, got %d", ce.EmbeddingDimensions))
	}

	// Cross-check the configured embeddings model's known dimension against
	// clip_engine.embedding_dimensions. A provider-reported default may
	// legitimately differ before the provider's first live call, so this is a
	// warning rather than a validation failure.
	if dims, ok := modelDimensions[cfg.Embeddings.Model]; ok && ce.EmbeddingDimensions > 0 && dims != ce.EmbeddingDimensions {
		slog.Warn("embeddings.model's known dimension disagrees with clip_engine.embedding_dimensions",
			"model", cfg.Embeddings.Model,
			"model_dimensions", dims,
			"configured_dimensions", ce.EmbeddingDimensions,
		)
	}

	if cfg.ClipEngine.UseLLMForClipSuggestions && cfg.LLM.Provider == "" {
		slog.Warn("clip_engine.use_llm_for_clip_suggestions is true but llm.provider is not configured; LLM scoring stage will be skipped")
	}

	if cfg.Storage.PostgresDSN == "" {
		errs = append(errs, fmt.Errorf("storage.postgres_dsn is required"))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
