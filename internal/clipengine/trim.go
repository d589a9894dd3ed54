package clipengine

// applyTrim snaps an LLM-suggested trim to segment boundaries and rewrites
// the candidate's bounds in place, leaving it unchanged if the trim is not
// confident enough or the snap fails to produce a valid duration.
func applyTrim(segments []TranscriptSegment, c *Candidate, cfg Config) {
	if c.Trim == nil {
		return
	}
	if c.Trim.Confidence < 0.8 {
		return
	}
	if c.Trim.StartOffsetSec <= 0 && c.Trim.EndOffsetSec <= 0 {
		return
	}

	newStartMS := c.StartMS + int(c.Trim.StartOffsetSec*1000)
	newEndMS := c.EndMS - int(c.Trim.EndOffsetSec*1000)

	newStartIdx := -1
	for i := c.StartIdx; i <= c.EndIdx; i++ {
		if segments[i].EndMS >= newStartMS {
			newStartIdx = i
			break
		}
	}
	if newStartIdx == -1 {
		return
	}

	newEndIdx := -1
	for j := c.EndIdx; j >= newStartIdx; j-- {
		if segments[j].StartMS <= newEndMS {
			newEndIdx = j
			break
		}
	}
	if newEndIdx == -1 {
		return
	}

	snappedStartMS := segments[newStartIdx].StartMS
	snappedEndMS := segments[newEndIdx].EndMS
	duration := snappedEndMS - snappedStartMS
	if duration < cfg.MinClipMS || duration > cfg.MaxClipMS {
		return
	}

	c.StartIdx = newStartIdx
	c.EndIdx = newEndIdx
	c.StartMS = snappedStartMS
	c.EndMS = snappedEndMS
	c.TrimApplied = true
}
