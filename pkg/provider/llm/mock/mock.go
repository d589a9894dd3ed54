// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the scorer sends correct
// CompletionRequests and to feed controlled responses without a live LLM
// backend.
package mock

import (
	"context"
	"sync"

	"github.com/sermonforge/clipsuggest/pkg/provider/llm"
	"github.com/sermonforge/clipsuggest/pkg/types"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	Ctx context.Context
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	// CompleteResponse is returned by Complete. May be nil.
	CompleteResponse *llm.CompletionResponse

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// TokenCount is returned by CountTokens.
	TokenCount int

	// CountTokensErr, if non-nil, is returned as the error from CountTokens.
	CountTokensErr error

	// ModelCapabilities is returned by Capabilities.
	ModelCapabilities types.ModelCapabilities

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall

	// CompleteSequence, when non-empty, is consumed one response per call to
	// Complete instead of always returning CompleteResponse. Useful for tests
	// that simulate the first run succeeding and a later run failing.
	CompleteSequence []CompleteResult
}

// CompleteResult is one entry of a scripted Complete call sequence.
type CompleteResult struct {
	Response *llm.CompletionResponse
	Err      error
}

// Complete records the call and returns either the next scripted result from
// CompleteSequence or the static CompleteResponse/CompleteErr pair.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})

	if len(p.CompleteSequence) > 0 {
		next := p.CompleteSequence[0]
		p.CompleteSequence = p.CompleteSequence[1:]
		return next.Response, next.Err
	}
	return p.CompleteResponse, p.CompleteErr
}

// CountTokens records nothing beyond returning the configured values; token
// counting has no observable side effects worth recording.
func (p *Provider) CountTokens(messages []types.Message) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.TokenCount, p.CountTokensErr
}

// Capabilities returns ModelCapabilities.
func (p *Provider) Capabilities() types.ModelCapabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ModelCapabilities
}

// Reset clears all recorded calls and scripted sequences. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = nil
	p.CompleteSequence = nil
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
