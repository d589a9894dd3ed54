package clipengine

import "testing"

func TestDedupeOverlap_RejectsHeavilyOverlappingLowerScore(t *testing.T) {
	cfg := Config{OverlapDedupeRatio: 0.6}
	candidates := []Candidate{
		{StartMS: 0, EndMS: 10000, FusedScore: 90},
		{StartMS: 1000, EndMS: 9000, FusedScore: 80}, // fully inside the first (overlap ratio 1.0)
		{StartMS: 20000, EndMS: 30000, FusedScore: 70},
	}

	surviving := dedupeOverlap(candidates, cfg)

	if len(surviving) != 2 {
		t.Fatalf("len(surviving) = %d, want 2", len(surviving))
	}
	if surviving[0].StartMS != 0 || surviving[1].StartMS != 20000 {
		t.Fatalf("unexpected surviving set: %+v", surviving)
	}
}

func TestDedupeOverlap_RespectsConfiguredRatio(t *testing.T) {
	// overlapRatio(a, b) here is 0.875 (7000ms overlap / 8000ms shorter
	// duration). A strict 0.6 threshold rejects the second candidate; a
	// looser 0.9 threshold lets both through.
	candidates := []Candidate{
		{StartMS: 0, EndMS: 10000, FusedScore: 90},
		{StartMS: 3000, EndMS: 11000, FusedScore: 80},
	}

	strict := dedupeOverlap(candidates, Config{OverlapDedupeRatio: 0.6})
	if len(strict) != 1 {
		t.Fatalf("len(strict) = %d, want 1 with a 0.6 ratio", len(strict))
	}

	loose := dedupeOverlap(candidates, Config{OverlapDedupeRatio: 0.9})
	if len(loose) != 2 {
		t.Fatalf("len(loose) = %d, want 2 with a 0.9 ratio", len(loose))
	}
}

func TestOverlapRatio_NonOverlappingIsZero(t *testing.T) {
	a := Candidate{StartMS: 0, EndMS: 5000}
	b := Candidate{StartMS: 6000, EndMS: 9000}
	if r := overlapRatio(a, b); r != 0 {
		t.Fatalf("overlapRatio() = %.2f, want 0", r)
	}
}

func TestDedupeSemantic_RejectsSimilarCentroid(t *testing.T) {
	cfg := Config{SemanticDedupeMax: 10, SemanticDedupeSimilarity: 0.95, MaxSuggestions: 10}
	candidates := []Candidate{
		{FusedScore: 90, Centroid: []float32{1, 0, 0}},
		{FusedScore: 80, Centroid: []float32{1, 0, 0}}, // identical direction, rejected
		{FusedScore: 70, Centroid: []float32{0, 1, 0}}, // orthogonal, kept
	}

	surviving := dedupeSemantic(candidates, cfg)

	if len(surviving) != 2 {
		t.Fatalf("len(surviving) = %d, want 2: %+v", len(surviving), surviving)
	}
	if surviving[0].FusedScore != 90 || surviving[1].FusedScore != 70 {
		t.Fatalf("unexpected surviving set: %+v", surviving)
	}
}

func TestDedupeSemantic_NilCentroidBypassesCheck(t *testing.T) {
	cfg := Config{SemanticDedupeMax: 10, SemanticDedupeSimilarity: 0.5, MaxSuggestions: 10}
	candidates := []Candidate{
		{FusedScore: 90, Centroid: []float32{1, 0, 0}},
		{FusedScore: 80, Centroid: nil},
	}

	surviving := dedupeSemantic(candidates, cfg)

	if len(surviving) != 2 {
		t.Fatalf("len(surviving) = %d, want 2 (nil centroid should bypass similarity check)", len(surviving))
	}
}

func TestDedupeSemantic_TruncatesToMaxSuggestions(t *testing.T) {
	cfg := Config{SemanticDedupeMax: 10, SemanticDedupeSimilarity: 0.95, MaxSuggestions: 1}
	candidates := []Candidate{
		{FusedScore: 90, Centroid: []float32{1, 0, 0}},
		{FusedScore: 80, Centroid: []float32{0, 1, 0}},
	}

	surviving := dedupeSemantic(candidates, cfg)

	if len(surviving) != 1 {
		t.Fatalf("len(surviving) = %d, want 1", len(surviving))
	}
}
