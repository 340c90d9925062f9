package loopctl

import (
	"testing"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
)

// fakeDecoder is a minimal decoder.Decoder double recording Seek calls.
type fakeDecoder struct {
	seekSeconds float64
	seekCalled  bool
}

func (f *fakeDecoder) Format() decoder.Format                                 { return decoder.Format{} }
func (f *fakeDecoder) TotalBytes() int64                                      { return -1 }
func (f *fakeDecoder) MaxDuration() time.Duration                             { return 0 }
func (f *fakeDecoder) ReadSamples(seconds float64) ([]byte, int, bool, error) { return nil, 0, false, nil }
func (f *fakeDecoder) Seek(seconds float64) error {
	f.seekSeconds = seconds
	f.seekCalled = true
	return nil
}
func (f *fakeDecoder) Reset() error   { return nil }
func (f *fakeDecoder) Dispose() error { return nil }

func newThreeSegmentTracker() *Tracker {
	segs := []Segment{
		{Start: 0, End: 2 * time.Second, Kind: Start},
		{Start: 2 * time.Second, End: 4 * time.Second, Kind: Middle},
		{Start: 4 * time.Second, End: 0, Kind: End},
	}
	return NewTracker(segs, 10*time.Second)
}

func TestEndSegmentPatchedToMaxDuration(t *testing.T) {
	tr := newThreeSegmentTracker()
	if tr.segments[2].End != 10*time.Second {
		t.Fatalf("End segment.End = %v, want 10s", tr.segments[2].End)
	}
}

func TestMiddleSegmentLoopsOnItself(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 1 // Middle

	secs := 3.0 // 2s + 3s = 5s > Middle.End (4s)
	checkLoop := tr.ModifyReadSeconds(2*time.Second, &secs)
	if !checkLoop {
		t.Fatalf("expected checkLoop=true when crossing Middle's end")
	}
	if secs != 2.0 {
		t.Fatalf("expected secs clamped to 2.0 (4s-2s), got %v", secs)
	}
	if tr.LoopTargetTime() != 2*time.Second {
		t.Fatalf("expected loop target = Middle.Start (2s), got %v", tr.LoopTargetTime())
	}
	if tr.TargetIndex() != 1 {
		t.Fatalf("expected targetIndex to remain on Middle, got %d", tr.TargetIndex())
	}
}

func TestLastSegmentNeverLoops(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 2 // End, the last segment

	secs := 100.0
	checkLoop := tr.ModifyReadSeconds(4*time.Second, &secs)
	if checkLoop {
		t.Fatalf("expected the last segment to never force a loop")
	}
	if secs != 100.0 {
		t.Fatalf("secs should be untouched when not looping, got %v", secs)
	}
}

func TestForceLoopingExceptOnLastSegment(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 0
	if !tr.ForceLooping() {
		t.Fatalf("expected ForceLooping=true on the Start segment")
	}
	tr.targetIndex = 1
	if !tr.ForceLooping() {
		t.Fatalf("expected ForceLooping=true on the Middle segment")
	}
	tr.targetIndex = 2
	if tr.ForceLooping() {
		t.Fatalf("expected ForceLooping=false on the last (End) segment")
	}
}

// TestJumpToImmediateSeeksAndRetargets exercises S5: jumping to
// segment index 1 at runtime should seek the decoder to that
// segment's start and retarget the tracker to it.
func TestJumpToImmediateSeeksAndRetargets(t *testing.T) {
	tr := newThreeSegmentTracker()
	dec := &fakeDecoder{}

	if err := tr.JumpTo(dec, 1, false); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if !dec.seekCalled || dec.seekSeconds != 2.0 {
		t.Fatalf("expected decoder.Seek(2.0), got called=%v seconds=%v", dec.seekCalled, dec.seekSeconds)
	}
	if tr.TargetIndex() != 1 {
		t.Fatalf("expected targetIndex=1 after JumpTo, got %d", tr.TargetIndex())
	}
	if tr.LoopTargetTime() != 2*time.Second {
		t.Fatalf("expected loopTargetTime=2s after JumpTo, got %v", tr.LoopTargetTime())
	}
}

func TestJumpToOnEndDefersUntilLoopPoint(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 1 // Middle, looping on itself
	dec := &fakeDecoder{}

	if err := tr.JumpTo(dec, 2, true); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if dec.seekCalled {
		t.Fatalf("onEnd jump must not seek immediately")
	}
	if tr.TargetIndex() != 1 {
		t.Fatalf("onEnd jump must not retarget immediately")
	}

	secs := 3.0
	checkLoop := tr.ModifyReadSeconds(2*time.Second, &secs)
	if !checkLoop {
		t.Fatalf("expected checkLoop at Middle's end even with a delayed jump pending")
	}
	if tr.TargetIndex() != 2 {
		t.Fatalf("expected the delayed jump to retarget to segment 2 (End), got %d", tr.TargetIndex())
	}
	if tr.LoopTargetTime() != 4*time.Second {
		t.Fatalf("expected loop target = End.Start (4s), got %v", tr.LoopTargetTime())
	}
}

func TestResetToZeroThenAppliesDelayedJump(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 1
	dec := &fakeDecoder{}
	_ = tr.JumpTo(dec, 2, true)

	tr.Reset()
	if tr.TargetIndex() != 2 {
		t.Fatalf("expected Reset to land on the delayed jump target (2), got %d", tr.TargetIndex())
	}
}

func TestResetWithNoDelayedJumpGoesToSegmentZero(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 1
	tr.Reset()
	if tr.TargetIndex() != 0 {
		t.Fatalf("expected Reset with no delayed jump to land on segment 0, got %d", tr.TargetIndex())
	}
}

func TestOnDelayedSectionStartFiresOnceAtSegmentStart(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 1
	fired := 0
	tr.SetOnDelayedSectionStart(func() { fired++ })

	secs := 0.1
	tr.ModifyReadSeconds(2*time.Second, &secs) // readTime == Middle.Start
	if fired != 1 {
		t.Fatalf("expected callback to fire exactly once, fired=%d", fired)
	}

	secs = 0.1
	tr.ModifyReadSeconds(2*time.Second, &secs)
	if fired != 1 {
		t.Fatalf("expected callback to be cleared after firing, fired=%d", fired)
	}
}

func TestModifyReadSecondsResyncsTargetIndexFromReadTime(t *testing.T) {
	tr := newThreeSegmentTracker()
	tr.targetIndex = 0 // stale: actual read position has moved into End

	secs := 0.1
	tr.ModifyReadSeconds(5*time.Second, &secs)
	if tr.TargetIndex() != 2 {
		t.Fatalf("expected resync to segment 2 (End) for readTime=5s, got %d", tr.TargetIndex())
	}
}
