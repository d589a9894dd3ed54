package clipengine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sermonforge/clipsuggest/pkg/provider/llm"
	"github.com/sermonforge/clipsuggest/pkg/types"
)

// llmSystemPrompt instructs the model to grade sermon clip candidates on the
// same Spanish-language rubric the reference worker's prompt used, so the
// scoring criteria match exactly rather than being translated.
const llmSystemPrompt = `Eres un experto en la creacion de clips virales para redes sociales a partir de sermones.
Evalua cada candidato de clip segun estos criterios:
- HOOK: la fuerza del gancho inicial que capta la atencion.
- CLARIDAD: que tan claro y autocontenido es el mensaje sin contexto adicional.
- APLICABILIDAD: que tan aplicable es el mensaje a la vida diaria del oyente.
- EMOCION: la intensidad emocional transmitida por el fragmento.

Responde UNICAMENTE con un arreglo JSON de objetos con los campos:
id (string), score (numero de 0 a 100), reason (string en espanol),
y opcionalmente trim_suggestion: {start_offset_sec, end_offset_sec, confidence}.`

const maxLLMTextChars = 1500

// llmCandidateInput is the wire shape sent to the LLM for each candidate.
type llmCandidateInput struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	ApproxDurationSec float64 `json:"approx_duration_sec"`
}

// llmTrimSuggestion is the wire shape of an optional trim suggestion.
type llmTrimSuggestion struct {
	StartOffsetSec float64 `json:"start_offset_sec"`
	EndOffsetSec   float64 `json:"end_offset_sec"`
	Confidence     float64 `json:"confidence"`
}

// llmResultItem is the wire shape of a single scored candidate in the LLM's
// response.
type llmResultItem struct {
	ID            string             `json:"id"`
	Score         json.Number        `json:"score"`
	Reason        string             `json:"reason"`
	TrimSuggestion *llmTrimSuggestion `json:"trim_suggestion"`
}

// scoreWithLLM sends the top cfg.LLMMaxCandidates candidates (by heuristic
// score) to provider for scoring. On any transport, HTTP, or schema failure
// it returns [ErrLLMUnavailable]; callers must downgrade to heuristic-only
// scoring rather than treat this as terminal.
func scoreWithLLM(ctx context.Context, segments []TranscriptSegment, candidates []Candidate, cfg Config, provider llm.Provider) (llm.Usage, error) {
	order := make([]int, len(candidates))
	for i := range candidates {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return candidates[order[a]].HeuristicScore > candidates[order[b]].HeuristicScore
	})
	if len(order) > cfg.LLMMaxCandidates {
		order = order[:cfg.LLMMaxCandidates]
	}

	inputs := make([]llmCandidateInput, len(order))
	idToIdx := make(map[string]int, len(order))
	for i, idx := range order {
		id := strconv.Itoa(idx)
		idToIdx[id] = idx

		var sb strings.Builder
		for s := candidates[idx].StartIdx; s <= candidates[idx].EndIdx; s++ {
			if s > candidates[idx].StartIdx {
				sb.WriteByte(' ')
			}
			sb.WriteString(segments[s].Text)
		}

		inputs[i] = llmCandidateInput{
			ID:                id,
			Text:              prepareLLMText(sb.String()),
			ApproxDurationSec: float64(candidates[idx].DurationMS()) / 1000,
		}
	}

	payload, err := json.Marshal(inputs)
	if err != nil {
		return llm.Usage{}, fmt.Errorf("%w: marshal candidates: %v", ErrLLMUnavailable, err)
	}

	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: llmSystemPrompt,
		Messages: []types.Message{
			{Role: "user", Content: string(payload)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return llm.Usage{}, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	if resp == nil {
		return llm.Usage{}, fmt.Errorf("%w: empty completion response", ErrLLMUnavailable)
	}

	results, err := parseLLMResults(resp.Content)
	if err != nil {
		return resp.Usage, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	if len(results) < len(inputs) {
		return resp.Usage, fmt.Errorf("%w: returned %d results for %d candidates", ErrLLMUnavailable, len(results), len(inputs))
	}

	for _, r := range results {
		idx, ok := idToIdx[r.ID]
		if !ok {
			continue
		}
		score, _ := r.Score.Float64()
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		candidates[idx].LLMScore = &score
		candidates[idx].LLMReason = r.Reason
		if r.TrimSuggestion != nil {
			candidates[idx].Trim = &LLMTrim{
				StartOffsetSec: r.TrimSuggestion.StartOffsetSec,
				EndOffsetSec:   r.TrimSuggestion.EndOffsetSec,
				Confidence:     r.TrimSuggestion.Confidence,
			}
		}
	}

	return resp.Usage, nil
}

// prepareLLMText normalises whitespace and, for text longer than
// maxLLMTextChars, produces a head/middle/tail summary joined by " ... ".
func prepareLLMText(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if len(runes) <= maxLLMTextChars {
		return normalized
	}

	third := maxLLMTextChars / 3
	n := len(runes)
	midStart := n/2 - third/2

	head := string(runes[:third])
	mid := string(runes[midStart : midStart+third])
	tail := string(runes[n-third:])

	return head + " ... " + mid + " ... " + tail
}

// parseLLMResults tolerantly parses an LLM response body as a list of
// [llmResultItem]. It accepts a bare JSON array, an object with a "results"
// or "clips" key wrapping the array, or a JSON fragment embedded in
// surrounding prose (by scanning the outermost bracket pair).
func parseLLMResults(body string) ([]llmResultItem, error) {
	body = strings.TrimSpace(body)

	var items []llmResultItem
	if err := json.Unmarshal([]byte(body), &items); err == nil {
		return items, nil
	}

	var wrapper struct {
		Results []llmResultItem `json:"results"`
		Clips   []llmResultItem `json:"clips"`
	}
	if err := json.Unmarshal([]byte(body), &wrapper); err == nil {
		if len(wrapper.Results) > 0 {
			return wrapper.Results, nil
		}
		if len(wrapper.Clips) > 0 {
			return wrapper.Clips, nil
		}
	}

	if fragment, ok := extractBracketed(body, '[', ']'); ok {
		if err := json.Unmarshal([]byte(fragment), &items); err == nil {
			return items, nil
		}
	}
	if fragment, ok := extractBracketed(body, '{', '}'); ok {
		if err := json.Unmarshal([]byte(fragment), &wrapper); err == nil {
			if len(wrapper.Results) > 0 {
				return wrapper.Results, nil
			}
			if len(wrapper.Clips) > 0 {
				return wrapper.Clips, nil
			}
		}
	}

	return nil, fmt.Errorf("clipengine: could not parse llm response as a list of scored candidates")
}

// extractBracketed returns the substring from the first open bracket through
// the last close bracket (the outermost span), if both are present in that
// order.
func extractBracketed(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// estimateLLMCostUSD estimates the dollar cost of an LLM scorer call from
// token usage, using the reference worker's per-million-token pricing.
func estimateLLMCostUSD(usage llm.Usage) float64 {
	return float64(usage.PromptTokens)/1e6*0.14 + float64(usage.CompletionTokens)/1e6*0.28
}
