package clipengine

import "context"

// candidatesToClips converts surviving candidates into Clip rows ready for
// insertion, in the order they should be persisted.
func candidatesToClips(sermonID int64, candidates []Candidate, useLLM bool) []Clip {
	clips := make([]Clip, len(candidates))
	for i, c := range candidates {
		score := c.FusedScore
		clip := Clip{
			SermonID:    sermonID,
			StartMS:     c.StartMS,
			EndMS:       c.EndMS,
			Source:      ClipSourceAuto,
			Score:       &score,
			Rationale:   c.Rationale,
			UseLLM:      useLLM,
			TrimApplied: c.TrimApplied,
			Status:      ClipPending,
		}
		if c.TrimApplied && c.Trim != nil {
			trim := *c.Trim
			clip.LLMTrim = &trim
		}
		clips[i] = clip
	}
	return clips
}

// persistSuggestions soft-deletes the sermon's prior auto-suggestions and
// inserts the new candidate set in a single transaction, via store.
func persistSuggestions(ctx context.Context, store ClipStore, sermonID int64, candidates []Candidate, useLLM bool) (softDeleted, inserted int, err error) {
	clips := candidatesToClips(sermonID, candidates, useLLM)
	return store.SaveSuggestions(ctx, sermonID, clips)
}
