package clipengine

import (
	"errors"

	"github.com/sermonforge/clipsuggest/internal/resilience"
)

// Sentinel errors checked with errors.Is by the retry/failure fabric and by
// callers of [SuggestClips].
var (
	// ErrSermonNotFound is returned when the sermon row cannot be located.
	ErrSermonNotFound = errors.New("clipengine: sermon not found")

	// ErrEmptyTranscript is returned by the transcript loader when a sermon
	// has zero non-deleted segments.
	ErrEmptyTranscript = errors.New("clipengine: transcript has no segments")

	// ErrNoCandidates is returned by the candidate builder when every
	// fallback combination of strict_end and breakpoint-awareness yields an
	// empty candidate set.
	ErrNoCandidates = errors.New("clipengine: no candidates satisfy duration and boundary constraints")

	// ErrSermonDeleted signals that the sermon was soft-deleted during
	// execution; SuggestClips treats this as a benign outcome, not a
	// failure.
	ErrSermonDeleted = errors.New("clipengine: sermon was soft-deleted during processing")

	// ErrLLMUnavailable is returned internally by the LLM scorer on any
	// transport, HTTP, or schema failure. It is always recovered within
	// SuggestClips by downgrading to heuristic-only scoring and is never
	// returned to the caller; aliased to the resilience package's sentinel
	// so the retry/failure fabric's Classify never needs to import this
	// package to recognise it.
	ErrLLMUnavailable = resilience.ErrLLMUnavailable
)
