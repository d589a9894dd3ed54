package clipengine

import (
	"fmt"
	"strings"
	"unicode"
)

// buildCandidates enumerates every (startIdx, endIdx) candidate within a
// single breakpoint window whose duration falls in
// [cfg.MinClipMS, cfg.MaxClipMS], subject to boundary-cleanliness rules.
//
// A fallback chain is applied in order until a non-empty result is
// produced: (strictEnd=true, breakpoint-aware) -> (strictEnd=false,
// breakpoint-aware) -> (strictEnd=true, ignoring breakpoints) ->
// (strictEnd=false, ignoring breakpoints). If every combination yields an
// empty result, fails with [ErrNoCandidates].
func buildCandidates(segments []TranscriptSegment, breakpoints []int, cfg Config) ([]Candidate, error) {
	noBreakpoints := []int{0, len(segments)}

	attempts := []struct {
		strictEnd   bool
		breakpoints []int
	}{
		{true, breakpoints},
		{false, breakpoints},
		{true, noBreakpoints},
		{false, noBreakpoints},
	}

	for _, a := range attempts {
		candidates := buildCandidatesOnce(segments, a.breakpoints, a.strictEnd, cfg)
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	return nil, ErrNoCandidates
}

func buildCandidatesOnce(segments []TranscriptSegment, breakpoints []int, strictEnd bool, cfg Config) []Candidate {
	var out []Candidate

	for w := 0; w+1 < len(breakpoints); w++ {
		winStart, winEnd := breakpoints[w], breakpoints[w+1]

		for start := winStart; start < winEnd; start++ {
			gapMS := 0

			for end := start; end < winEnd; end++ {
				if end > start {
					gap := segments[end].StartMS - segments[end-1].EndMS
					if gap > cfg.LongGapMS {
						gapMS += gap
					}
				}

				duration := segments[end].EndMS - segments[start].StartMS
				if duration < cfg.MinClipMS {
					continue
				}
				if duration > cfg.MaxClipMS {
					break
				}

				startClean := isStartClean(segments, start, cfg)
				endClean := isEndClean(segments, end, winEnd, cfg)
				if strictEnd && !endClean {
					continue
				}

				out = append(out, Candidate{
					StartMS:    segments[start].StartMS,
					EndMS:      segments[end].EndMS,
					StartIdx:   start,
					EndIdx:     end,
					GapMS:      gapMS,
					StartClean: startClean,
					EndClean:   endClean,
				})
			}
		}
	}

	return out
}

// isStartClean reports whether a candidate beginning at segments[idx] starts
// at a natural boundary: the very first segment, a sufficiently large
// preceding gap, or a capitalized/digit-leading first character.
func isStartClean(segments []TranscriptSegment, idx int, cfg Config) bool {
	if idx == 0 {
		return true
	}
	gap := segments[idx].StartMS - segments[idx-1].EndMS
	if gap >= cfg.StartGapMS {
		return true
	}
	return startsUpperOrDigit(segments[idx].Text)
}

func startsUpperOrDigit(text string) bool {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)[0]
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// isEndClean reports whether a candidate ending at segments[idx] ends at a
// natural boundary: sentence-final punctuation, a trailing ellipsis, a
// sufficiently large following gap, or no following segment at all.
func isEndClean(segments []TranscriptSegment, idx, winEnd int, cfg Config) bool {
	if idx == len(segments)-1 {
		return true
	}
	text := strings.TrimRightFunc(segments[idx].Text, unicode.IsSpace)
	if strings.HasSuffix(text, "...") {
		return true
	}
	if text != "" {
		last := []rune(text)[len([]rune(text))-1]
		switch last {
		case '.', '!', '?':
			return true
		}
	}
	gap := segments[idx+1].StartMS - segments[idx].EndMS
	return gap >= cfg.EndGapMS
}

// formatCleanlinessFlags renders start/end cleanliness for rationale strings.
func formatCleanlinessFlags(startClean, endClean bool) string {
	return fmt.Sprintf("start_clean=%t end_clean=%t", startClean, endClean)
}
