package clipengine

import "testing"

func testSegments() []TranscriptSegment {
	return []TranscriptSegment{
		{StartMS: 0, EndMS: 2000, Text: "uno"},
		{StartMS: 2000, EndMS: 5000, Text: "dos"},
		{StartMS: 5000, EndMS: 9000, Text: "tres"},
		{StartMS: 9000, EndMS: 12000, Text: "cuatro"},
	}
}

func TestApplyTrim_SnapsToSegmentBoundaries(t *testing.T) {
	segments := testSegments()
	cfg := Config{MinClipMS: 1000, MaxClipMS: 20000}
	c := &Candidate{
		StartIdx: 0, EndIdx: 3, StartMS: 0, EndMS: 12000,
		Trim: &LLMTrim{StartOffsetSec: 2.5, EndOffsetSec: 3.5, Confidence: 0.9},
	}

	applyTrim(segments, c, cfg)

	if !c.TrimApplied {
		t.Fatal("expected TrimApplied = true")
	}
	if c.StartIdx != 1 || c.StartMS != 2000 {
		t.Errorf("start not snapped correctly: idx=%d ms=%d", c.StartIdx, c.StartMS)
	}
	if c.EndIdx != 2 || c.EndMS != 9000 {
		t.Errorf("end not snapped correctly: idx=%d ms=%d", c.EndIdx, c.EndMS)
	}
}

func TestApplyTrim_LowConfidenceSkipped(t *testing.T) {
	segments := testSegments()
	cfg := Config{MinClipMS: 1000, MaxClipMS: 20000}
	c := &Candidate{
		StartIdx: 0, EndIdx: 3, StartMS: 0, EndMS: 12000,
		Trim: &LLMTrim{StartOffsetSec: 1.5, EndOffsetSec: 2.0, Confidence: 0.5},
	}

	applyTrim(segments, c, cfg)

	if c.TrimApplied {
		t.Fatal("low-confidence trim should not be applied")
	}
	if c.StartMS != 0 || c.EndMS != 12000 {
		t.Error("candidate bounds should be unchanged")
	}
}

func TestApplyTrim_RejectsDurationBelowMin(t *testing.T) {
	segments := testSegments()
	cfg := Config{MinClipMS: 10000, MaxClipMS: 20000}
	c := &Candidate{
		StartIdx: 0, EndIdx: 3, StartMS: 0, EndMS: 12000,
		Trim: &LLMTrim{StartOffsetSec: 2.5, EndOffsetSec: 3.5, Confidence: 0.9},
	}

	applyTrim(segments, c, cfg)

	if c.TrimApplied {
		t.Fatal("trim producing too-short a clip should be rejected")
	}
}

func TestApplyTrim_NilTrimIsNoop(t *testing.T) {
	segments := testSegments()
	cfg := Config{MinClipMS: 1000, MaxClipMS: 20000}
	c := &Candidate{StartIdx: 0, EndIdx: 3, StartMS: 0, EndMS: 12000}

	applyTrim(segments, c, cfg)

	if c.TrimApplied {
		t.Fatal("nil trim should never set TrimApplied")
	}
}
