// Package llm defines the Provider interface for Large Language Model backends
// used by the clip suggestion engine's scoring stage.
//
// An LLM provider wraps a remote chat-completion API (OpenAI, Anthropic,
// Ollama, ...) and exposes a uniform interface so the scorer can grade
// candidate clips without coupling to any specific SDK. Implementations must
// be safe for concurrent use.
package llm

import (
	"context"

	"github.com/sermonforge/clipsuggest/pkg/types"
)

// Usage holds token accounting information returned by the LLM backend.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
}

// CompletionRequest carries everything the LLM needs to produce a response.
type CompletionRequest struct {
	// Messages is the ordered conversation history.
	Messages []types.Message

	// Temperature controls output randomness in the range [0.0, 2.0].
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int

	// SystemPrompt is an optional high-priority instruction injected before the
	// conversation history.
	SystemPrompt string
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any LLM backend used by the scorer.
//
// Implementations must be safe for concurrent use from multiple goroutines
// and must propagate context cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or if ctx is cancelled before the
	// completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CountTokens estimates the number of tokens the given message list would
	// consume. The clip engine's LLM scorer does not call it; it caps batches
	// by candidate count instead.
	CountTokens(messages []types.Message) (int, error)

	// Capabilities returns static metadata describing what this provider's
	// underlying model supports.
	Capabilities() types.ModelCapabilities
}
