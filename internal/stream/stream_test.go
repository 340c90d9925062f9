package stream

import (
	"testing"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/sample"
	"github.com/absoluteAquarian/monosound/internal/sink"
)

// fakeDecoder is a minimal decoder.Decoder double over a byte slice
// whose values increase monotonically, so ordering can be checked by
// value rather than by tracking cursor offsets separately.
type fakeDecoder struct {
	sampleRate, channels int
	data                 []byte
	cursor               int
	seekCalls            []float64
}

func newFakeDecoder(sampleRate, channels int, seconds float64) *fakeDecoder {
	frameBytes := channels * 2
	n := int(seconds*float64(sampleRate)) * frameBytes
	data := make([]byte, n)
	samples := sample.BytesToInt16(make([]byte, n)) // length only
	for i := range samples {
		samples[i] = int16(i)
	}
	copy(data, sample.Int16ToBytes(samples))
	return &fakeDecoder{sampleRate: sampleRate, channels: channels, data: data}
}

func (d *fakeDecoder) Format() decoder.Format {
	return decoder.Format{SampleRate: d.sampleRate, Channels: d.channels, BitsPerSample: 16}
}
func (d *fakeDecoder) TotalBytes() int64          { return int64(len(d.data)) }
func (d *fakeDecoder) MaxDuration() time.Duration { return 0 }

func (d *fakeDecoder) ReadSamples(seconds float64) ([]byte, int, bool, error) {
	frameBytes := d.channels * 2
	want := int(seconds*float64(d.sampleRate)) * frameBytes
	want -= want % frameBytes
	if want <= 0 {
		want = frameBytes
	}
	remaining := len(d.data) - d.cursor
	if remaining <= 0 {
		return nil, 0, true, nil
	}
	if want > remaining {
		want = remaining - remaining%frameBytes
	}
	if want <= 0 {
		return nil, 0, true, nil
	}
	out := d.data[d.cursor : d.cursor+want]
	d.cursor += want
	return out, want, d.cursor >= len(d.data), nil
}

func (d *fakeDecoder) Seek(seconds float64) error {
	d.seekCalls = append(d.seekCalls, seconds)
	frameBytes := d.channels * 2
	pos := int(seconds*float64(d.sampleRate)) * frameBytes
	if pos > len(d.data) {
		pos = len(d.data)
	}
	if pos < 0 {
		pos = 0
	}
	d.cursor = pos
	return nil
}

func (d *fakeDecoder) Reset() error  { d.cursor = 0; return nil }
func (d *fakeDecoder) Dispose() error { return nil }

// fakeSink is a minimal sink.Sink double: SubmitBuffer enqueues, and
// drain simulates the device consuming buffers at its own pace.
type fakeSink struct {
	state              sink.State
	pending, submitted [][]byte
	handler            func()
	volume, pan, pitch float64
}

func newFakeSink() *fakeSink { return &fakeSink{volume: 1, pitch: 1} }

func (s *fakeSink) Play() error    { s.state = sink.Playing; return nil }
func (s *fakeSink) Pause() error   { s.state = sink.Paused; return nil }
func (s *fakeSink) Resume() error  { s.state = sink.Playing; return nil }
func (s *fakeSink) Stop(immediate bool) error {
	s.state = sink.Stopped
	if immediate {
		s.pending = nil
	}
	return nil
}
func (s *fakeSink) State() sink.State { return s.state }
func (s *fakeSink) SubmitBuffer(buf []byte) error {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	s.pending = append(s.pending, cp)
	s.submitted = append(s.submitted, cp)
	return nil
}
func (s *fakeSink) PendingBufferCount() int          { return len(s.pending) }
func (s *fakeSink) StrobeQueue()                     {}
func (s *fakeSink) SetBufferNeededHandler(fn func()) { s.handler = fn }
func (s *fakeSink) Volume() float64                  { return s.volume }
func (s *fakeSink) SetVolume(v float64)              { s.volume = v }
func (s *fakeSink) Pan() float64                     { return s.pan }
func (s *fakeSink) SetPan(v float64)                 { s.pan = v }
func (s *fakeSink) Pitch() float64                   { return s.pitch }
func (s *fakeSink) SetPitch(v float64)                { s.pitch = v }
func (s *fakeSink) Close() error                     { return nil }

func (s *fakeSink) drain(n int) {
	if n > len(s.pending) {
		n = len(s.pending)
	}
	s.pending = s.pending[n:]
}

func TestQueueOrderingMatchesReadOrder(t *testing.T) {
	dec := newFakeDecoder(100, 1, 1.0)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	if len(snk.submitted) == 0 {
		t.Fatalf("expected at least one buffer submitted on Play")
	}

	var prevLast int16
	for i, buf := range snk.submitted {
		samples := sample.BytesToInt16(buf)
		if i > 0 && samples[0] <= prevLast {
			t.Fatalf("buffer %d out of order: first sample %d <= previous buffer's last sample %d",
				i, samples[0], prevLast)
		}
		prevLast = samples[len(samples)-1]
	}
}

func TestPlayTimeAdvancesOnlyWhenPlaying(t *testing.T) {
	dec := newFakeDecoder(100, 1, 1.0)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	before := p.PlayTime()

	snk.drain(1)
	snk.handler()

	if p.PlayTime() <= before {
		t.Fatalf("expected playTime to advance after a drain while playing: before=%v after=%v", before, p.PlayTime())
	}

	_ = p.Pause()
	snk.drain(1)
	stillPlayingTime := p.PlayTime()
	snk.handler()
	if p.PlayTime() != stillPlayingTime {
		t.Fatalf("expected playTime to stay fixed while paused: before=%v after=%v", stillPlayingTime, p.PlayTime())
	}
}

func TestSetStreamPositionDefersUntilSinkDrains(t *testing.T) {
	dec := newFakeDecoder(100, 1, 1.0)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)
	_ = p.Play()

	if err := p.SetStreamPosition(0.5); err != nil {
		t.Fatalf("SetStreamPosition: %v", err)
	}

	// Sink still has pending buffers: playTime must not have snapped yet.
	snk.handler()
	if p.PlayTime() == 500*time.Millisecond {
		t.Fatalf("playTime snapped to the jump target before the sink drained")
	}

	// Drain everything, then the next BufferNeeded should snap.
	snk.drain(len(snk.pending))
	snk.handler()
	if p.PlayTime() != 500*time.Millisecond {
		t.Fatalf("expected playTime = 500ms after drain, got %v", p.PlayTime())
	}
}

func TestHandleLoopingMarksFinishedWhenNotLooping(t *testing.T) {
	dec := newFakeDecoder(100, 1, 0.02) // short stream, drains fast
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)

	finished := false
	p.SetOnFinished(func() { finished = true })
	p.SetIsLooping(false)

	_ = p.Play()
	for i := 0; i < 10 && !p.FinishedStreaming(); i++ {
		snk.drain(len(snk.pending))
		snk.handler()
	}

	if !finished || !p.FinishedStreaming() {
		t.Fatalf("expected the stream to report finished when not looping and the decoder runs dry")
	}
}

func TestHandleLoopingReseeksWhenLooping(t *testing.T) {
	dec := newFakeDecoder(100, 1, 0.02)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)

	looped := false
	p.SetOnLooping(func() { looped = true })
	p.SetIsLooping(true)

	_ = p.Play()
	for i := 0; i < 10 && !looped; i++ {
		snk.drain(len(snk.pending))
		snk.handler()
	}

	if !looped {
		t.Fatalf("expected onLooping to fire once the decoder ran dry while isLooping=true")
	}
	if p.FinishedStreaming() {
		t.Fatalf("a looping stream must not report finished")
	}
	if len(dec.seekCalls) == 0 {
		t.Fatalf("expected handleLooping to reseek the decoder")
	}
}

func TestFocusLossPausesOnlyWithPauseOnLostFocusAndUserPauseDoesNotArmResume(t *testing.T) {
	dec := newFakeDecoder(100, 1, 1.0)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)
	_ = p.Play()

	p.ApplyFocusLoss(PauseOnLostFocus)
	if p.State() != sink.Paused {
		t.Fatalf("expected focus loss to pause the stream, got state %v", p.State())
	}
	p.ApplyFocusGain()
	if p.State() != sink.Playing {
		t.Fatalf("expected focus gain to resume a focus-paused stream, got state %v", p.State())
	}

	// A user-issued pause must not be resumed by a later focus gain.
	_ = p.Pause()
	p.ApplyFocusGain()
	if p.State() != sink.Paused {
		t.Fatalf("expected focus gain to leave a user-paused stream paused, got state %v", p.State())
	}
}

func TestFocusLossNoopsWithKeepPlaying(t *testing.T) {
	dec := newFakeDecoder(100, 1, 1.0)
	snk := newFakeSink()
	p := New("test", dec, snk, 0.01)
	_ = p.Play()

	p.ApplyFocusLoss(KeepPlaying)
	if p.State() != sink.Playing {
		t.Fatalf("expected KeepPlaying to leave the stream playing through focus loss")
	}
}
