package clipengine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	interrogativeRe = regexp.MustCompile(`(?i)\?|\bque\b|\bcomo\b|\bpor que\b|\bporque\b`)
	statisticRe     = regexp.MustCompile(`\d+\s*%|\d+\s+de\s+cada\s+\d+`)
	impactWords     = []string{"increible", "sorprendente", "nunca", "siempre", "todos", "nadie", "secreto", "verdad", "descubre"}
	imperativeVerbs = []string{"imagina", "piensa", "considera", "mira", "escucha", "recuerda"}
	contrastWords   = []string{"pero", "sin embargo", "aunque", "a pesar de"}

	stripDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// normalizeForHook strips diacritics and lowercases text so the hook-scoring
// word lists (written without accents) match accented Spanish source text.
func normalizeForHook(text string) string {
	out, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(out)
}

// hookScore scores the first 150 characters of a candidate's text for
// attention-grabbing "hook" qualities, summing contributions up to 1.0. A
// hook qualifies when the sum reaches at least 0.30.
func hookScore(text string) float64 {
	runesText := []rune(text)
	if len(runesText) > 150 {
		runesText = runesText[:150]
	}
	head := normalizeForHook(string(runesText))

	var score float64

	if interrogativeRe.MatchString(head) {
		score += 0.35
	}
	if statisticRe.MatchString(head) {
		score += 0.25
	}
	for _, w := range impactWords {
		if strings.Contains(head, w) {
			score += 0.20
			break
		}
	}
	for _, v := range imperativeVerbs {
		if strings.HasPrefix(strings.TrimSpace(head), v) {
			score += 0.15
			break
		}
	}
	for _, w := range contrastWords {
		if strings.Contains(head, w) {
			score += 0.10
			break
		}
	}
	if idx := strings.Index(head, "!"); idx > 10 {
		score += 0.15
	}
	if len(strings.Fields(head)) <= 8 {
		score += 0.10
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// scoreHeuristic computes the linguistic heuristic score for a candidate
// spanning segments[startIdx:endIdx+1].
func scoreHeuristic(segments []TranscriptSegment, c *Candidate) {
	var sb strings.Builder
	for i := c.StartIdx; i <= c.EndIdx; i++ {
		if i > c.StartIdx {
			sb.WriteByte(' ')
		}
		sb.WriteString(segments[i].Text)
	}
	text := sb.String()
	wordCount := len(strings.Fields(text))

	var textPenalty float64
	switch {
	case wordCount < 8:
		textPenalty = 2.0
	case wordCount < 15:
		textPenalty = 1.0
	}

	gapPenalty := float64(c.GapMS) / 3000
	if gapPenalty > 2.0 {
		gapPenalty = 2.0
	}

	hook := hookScore(text)
	hookBonus := 1.5 * hook

	startBonus := -0.3
	if c.StartClean {
		startBonus = 0.3
	}
	endBonus := -0.6
	if c.EndClean {
		endBonus = 0.6
	}

	score := float64(wordCount)/10 + hookBonus + startBonus + endBonus - textPenalty - gapPenalty

	c.HookScore = hook
	c.HeuristicScore = score
	c.HeuristicRationale = fmt.Sprintf(
		"words=%d gap_ms=%d hook=%.2f %s",
		wordCount, c.GapMS, hook, formatCleanlinessFlags(c.StartClean, c.EndClean),
	)
	c.Rationale = c.HeuristicRationale
}
