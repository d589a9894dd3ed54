// Package types defines the small set of cross-cutting data structures used
// by the LLM provider interface, its implementations, and their callers
// (internal/resilience and the clip engine's LLM scorer). The embeddings
// provider packages do not use it.
package types

// Message represents a single message in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant name.
	Name string

	// ToolCalls contains any tool invocations requested by the assistant.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is "tool", identifying which tool call this responds to.
	ToolCallID string
}

// ToolCall represents a tool/function invocation requested by the LLM.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition describes a tool that can be offered to an LLM.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelCapabilities describes what an LLM model supports.
type ModelCapabilities struct {
	ContextWindow       int
	MaxOutputTokens     int
	SupportsToolCalling bool
	SupportsVision      bool
	SupportsStreaming   bool
}
