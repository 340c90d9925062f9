package loopctl

import (
	"sync"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// Tracker holds the segment graph and the index currently targeted
// for looping (§3.5). A segment other than the last one loops back to
// its own start when read reaches its end, unless a delayed jump has
// been armed via JumpTo(..., onEnd=true) — the mechanism a caller uses
// to let a looping section finish into the next one instead of
// repeating forever.
type Tracker struct {
	mu sync.Mutex

	segments    []Segment
	targetIndex int

	delayedJumpTarget     *int
	onDelayedSectionStart func()

	loopTargetTime time.Duration
}

// NewTracker builds a Tracker over segments, patching the single End
// segment's end to maxDuration. segments must be ordered by Start.
func NewTracker(segments []Segment, maxDuration time.Duration) *Tracker {
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	for i := range cp {
		if cp[i].Kind == End {
			cp[i].End = maxDuration
		}
	}
	t := &Tracker{segments: cp}
	if len(cp) > 0 {
		t.loopTargetTime = cp[0].Start
	}
	return t
}

// SetOnDelayedSectionStart registers a one-shot callback fired the
// next time ModifyReadSeconds observes readTime landing exactly on
// the current segment's start.
func (t *Tracker) SetOnDelayedSectionStart(cb func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDelayedSectionStart = cb
}

// TargetIndex returns the segment index the tracker currently
// considers current.
func (t *Tracker) TargetIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.targetIndex
}

// LoopTargetTime returns the decoder position the stream package
// should seek to once ModifyReadSeconds reports checkLoop=true.
func (t *Tracker) LoopTargetTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loopTargetTime
}

// ForceLooping implements the §4.8 handleLooping override: any
// segment other than the last forces isLooping=true so the stream
// package never closes mid-song.
func (t *Tracker) ForceLooping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.segments) > 0 && t.targetIndex != len(t.segments)-1
}

// JumpTo moves the tracker to segment i. With onEnd=false it seeks the
// decoder immediately, updates targetIndex, and sets loopTargetTime to
// the new segment's start. With onEnd=true it only records a delayed
// jump target, applied the next time the current segment's loop point
// is reached (§4.8 jumpTo).
func (t *Tracker) JumpTo(dec decoder.Decoder, i int, onEnd bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i < 0 || i >= len(t.segments) {
		return monoerr.ErrInvalidParameter
	}

	if onEnd {
		idx := i
		t.delayedJumpTarget = &idx
		return nil
	}

	if err := dec.Seek(t.segments[i].Start.Seconds()); err != nil {
		return err
	}
	t.targetIndex = i
	t.loopTargetTime = t.segments[i].Start
	return nil
}

// ModifyReadSeconds implements the §4.8 four-step algorithm, steps
// 1-3 (step 4, the Reset-time delayed jump, is Reset below). secs is
// the caller's requested read duration in seconds; it is clamped in
// place when the current segment's end would otherwise be crossed.
// Returns true if the caller's next read should report checkLoop.
func (t *Tracker) ModifyReadSeconds(readTime time.Duration, secs *float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.segments) == 0 {
		return false
	}

	cur := t.segments[t.targetIndex]
	if readTime < cur.Start || readTime > cur.End {
		best := 0
		for i, s := range t.segments {
			if s.Start <= readTime {
				best = i
			}
		}
		t.targetIndex = best
		cur = t.segments[best]
	}

	if readTime == cur.Start && t.onDelayedSectionStart != nil {
		cb := t.onDelayedSectionStart
		t.onDelayedSectionStart = nil
		cb()
	}

	end := readTime + time.Duration(*secs*float64(time.Second))
	if end <= cur.End {
		return false
	}

	loop, target := t.loopLocked()
	if !loop {
		return false
	}
	clamped := (cur.End - readTime).Seconds()
	if clamped < 0 {
		clamped = 0
	}
	*secs = clamped
	t.loopTargetTime = target
	return true
}

// loopLocked implements the per-segment Loop() decision: a pending
// delayed jump always wins and redirects the loop target to a new
// segment; otherwise the current segment loops back to its own start
// unless it is the last segment in the graph.
func (t *Tracker) loopLocked() (bool, time.Duration) {
	if t.delayedJumpTarget != nil {
		i := *t.delayedJumpTarget
		t.delayedJumpTarget = nil
		t.targetIndex = i
		return true, t.segments[i].Start
	}
	if t.targetIndex == len(t.segments)-1 {
		return false, 0
	}
	return true, t.segments[t.targetIndex].Start
}

// Reset implements step 4: reset to segment 0, then execute any
// pending delayed jump on top of that. Only valid while the owning
// stream's sink is stopped (enforced by the caller).
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.segments) == 0 {
		return
	}
	t.targetIndex = 0
	if t.delayedJumpTarget != nil {
		t.targetIndex = *t.delayedJumpTarget
		t.delayedJumpTarget = nil
	}
	t.loopTargetTime = t.segments[t.targetIndex].Start
}
