// Package clipengine implements the clip suggestion pipeline: given a
// sermon's timestamped transcript, it produces a ranked, deduplicated set of
// short clip candidates whose boundaries align with natural speech
// boundaries and whose quality is scored by a blend of heuristic and
// language-model signals.
package clipengine

import "time"

// SermonStatus is the lifecycle status of a [Sermon].
type SermonStatus string

const (
	SermonPending     SermonStatus = "pending"
	SermonUploaded    SermonStatus = "uploaded"
	SermonProcessing  SermonStatus = "processing"
	SermonTranscribed SermonStatus = "transcribed"
	SermonSuggested   SermonStatus = "suggested"
	SermonEmbedded    SermonStatus = "embedded"
	SermonError       SermonStatus = "error"
)

// Sermon is the logical unit of work the clip engine operates on. It is
// created externally (upload + transcription pipeline) and mutated by the
// clip engine only to set Status, Progress, and ErrorMessage.
type Sermon struct {
	ID          int64
	Title       string
	Preacher    string
	DurationSec int
	Status      SermonStatus
	Progress    int
	DeletedAt   *time.Time
	ErrorMessage string
}

// Deleted reports whether the sermon has been soft-deleted.
func (s Sermon) Deleted() bool {
	return s.DeletedAt != nil
}

// TranscriptSegment is a single timestamped utterance within a sermon's
// transcript. Within a sermon, segments are uniquely ordered by StartMS;
// overlaps may exist but are treated by half-open containment.
type TranscriptSegment struct {
	ID        int64
	SermonID  int64
	StartMS   int
	EndMS     int
	Text      string
	DeletedAt *time.Time

	// Embedding is attached by the embedding attacher stage; nil until then.
	Embedding []float32
}

// DurationMS returns the segment's duration in milliseconds.
func (s TranscriptSegment) DurationMS() int {
	return s.EndMS - s.StartMS
}

// ClipSource distinguishes user-authored clips from engine-produced
// suggestions.
type ClipSource string

const (
	ClipSourceManual ClipSource = "manual"
	ClipSourceAuto   ClipSource = "auto"
)

// ClipStatus is the lifecycle status of a [Clip].
type ClipStatus string

const (
	ClipPending    ClipStatus = "pending"
	ClipProcessing ClipStatus = "processing"
	ClipDone       ClipStatus = "done"
	ClipError      ClipStatus = "error"
)

// LLMTrim is an optional trim refinement suggested by the LLM scorer,
// expressed as offsets (in seconds) to shrink a candidate's bounds inward.
type LLMTrim struct {
	StartOffsetSec float64 `json:"start_offset_sec"`
	EndOffsetSec   float64 `json:"end_offset_sec"`
	Confidence     float64 `json:"confidence"`
}

// Clip is either a user-authored clip or an engine-produced auto-suggestion.
// For any sermon, the set of non-deleted clips with Source=auto is the
// current suggestion set; regenerating suggestions soft-deletes the prior
// set in the same transaction that inserts the new one.
type Clip struct {
	ID          int64
	SermonID    int64
	StartMS     int
	EndMS       int
	Source      ClipSource
	Score       *float64 // nullable for manual clips
	Rationale   string
	UseLLM      bool
	LLMTrim     *LLMTrim
	TrimApplied bool
	Status      ClipStatus
	DeletedAt   *time.Time
}

// DurationMS returns the clip's duration in milliseconds.
func (c Clip) DurationMS() int {
	return c.EndMS - c.StartMS
}

// Candidate is a transient, in-memory clip candidate produced and refined by
// the pipeline stages. It is never persisted directly; surviving candidates
// are converted to [Clip] rows by the persistence stage.
type Candidate struct {
	StartMS, EndMS         int
	StartIdx, EndIdx       int // indices into the segment sequence
	GapMS                  int // sum of inter-segment gaps exceeding LongGapMS

	HeuristicScore     float64
	HeuristicRationale string
	HookScore          float64
	StartClean         bool
	EndClean           bool

	SemanticType      string
	SemanticTypeScore float64
	Centroid          []float32

	LLMScore *float64
	LLMReason string
	Trim      *LLMTrim
	TrimApplied bool

	FusedScore float64
	Rationale  string
}

// DurationMS returns the candidate's duration in milliseconds.
func (c Candidate) DurationMS() int {
	return c.EndMS - c.StartMS
}

// Result is the outcome of a [SuggestClips] run.
type Result struct {
	SermonID    int64
	Suggestions int
	Deleted     bool
}
