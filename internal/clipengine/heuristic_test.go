package clipengine

import "testing"

func TestNormalizeForHook_StripsDiacritics(t *testing.T) {
	got := normalizeForHook("¿Qué SIGNIFICA la gracia?")
	want := "¿que significa la gracia?"
	if got != want {
		t.Fatalf("normalizeForHook() = %q, want %q", got, want)
	}
}

func TestHookScore_QuestionEarnsBonus(t *testing.T) {
	score := hookScore("¿Por que Dios permite el sufrimiento?")
	if score < 0.35 {
		t.Fatalf("hookScore() = %.2f, want >= 0.35 for an interrogative hook", score)
	}
}

func TestHookScore_FlatStatementScoresLow(t *testing.T) {
	score := hookScore("Continuamos leyendo el capitulo tres del libro de Juan esta manana")
	if score >= 0.30 {
		t.Fatalf("hookScore() = %.2f, want < 0.30 for a flat statement", score)
	}
}

func TestHookScore_ClampedToOne(t *testing.T) {
	text := "¡Increible! ¿Sabias que 9 de cada 10 personas nunca descubre la verdad?"
	score := hookScore(text)
	if score > 1.0 {
		t.Fatalf("hookScore() = %.2f, want <= 1.0", score)
	}
}

func TestScoreHeuristic_CleanBoundariesOutscoreDirty(t *testing.T) {
	segments := []TranscriptSegment{
		{StartMS: 0, EndMS: 4000, Text: "Esta es una oracion de prueba con suficientes palabras para pasar el umbral"},
	}

	clean := Candidate{StartIdx: 0, EndIdx: 0, StartClean: true, EndClean: true}
	scoreHeuristic(segments, &clean)

	dirty := Candidate{StartIdx: 0, EndIdx: 0, StartClean: false, EndClean: false}
	scoreHeuristic(segments, &dirty)

	if clean.HeuristicScore <= dirty.HeuristicScore {
		t.Fatalf("clean boundary score %.2f should exceed dirty boundary score %.2f", clean.HeuristicScore, dirty.HeuristicScore)
	}
	if clean.Rationale == "" {
		t.Fatal("expected a non-empty rationale string")
	}
}

func TestScoreHeuristic_ShortTextPenalized(t *testing.T) {
	segments := []TranscriptSegment{
		{StartMS: 0, EndMS: 1000, Text: "Amen hermanos"},
	}
	c := Candidate{StartIdx: 0, EndIdx: 0, StartClean: true, EndClean: true}
	scoreHeuristic(segments, &c)

	if c.HeuristicScore >= 2.0 {
		t.Fatalf("short candidate should be penalized, got score %.2f", c.HeuristicScore)
	}
}
