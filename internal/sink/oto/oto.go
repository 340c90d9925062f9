// Package oto implements the Sink contract (§6.2) over
// hajimehoshi/oto/v2.
package oto

import (
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
	"github.com/absoluteAquarian/monosound/internal/sink"
)

// lowWaterMark is the queue depth at or below which StrobeQueue fires
// the BufferNeeded handler, mirroring the stream package's target
// read-ahead depth of 3 buffers (§3.4).
const lowWaterMark = 2

// Sink wraps an oto/v2 Context/Player pair. Grounded on the
// oto.NewContext/ctx.NewPlayer(io.Pipe reader) construction in
// cmd/livekit-speaker/main.go, with the blocking pcmWriter.Write loop
// there replaced by a queue drained on its own goroutine per strobe —
// a direct generalization of livekit-client-2/pacing.go's
// PacingBuffer, whose ticker tick becomes an externally-driven
// StrobeQueue call and whose sendFunc becomes the pipe write.
type Sink struct {
	mu    sync.Mutex
	state sink.State

	channels   int
	blockAlign int

	ctx    *oto.Context
	player oto.Player
	pw     *io.PipeWriter

	queue    [][]byte
	onNeeded func()

	volume, pan, pitch float64

	writeErr error
}

// New constructs a Sink for the given sample rate / channel count.
// Only 16-bit PCM is accepted on SubmitBuffer (§6.2).
func New(sampleRate, channels int) (*Sink, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channels, 2)
	if err != nil {
		return nil, fmt.Errorf("oto sink: %v: %w", err, monoerr.ErrAudioHardwareMissing)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)

	return &Sink{
		state:      sink.Stopped,
		channels:   channels,
		blockAlign: channels * 2,
		ctx:        ctx,
		player:     player,
		pw:         pw,
		volume:     1.0,
		pan:        0.0,
		pitch:      1.0,
	}, nil
}

func (s *Sink) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Play()
	s.state = sink.Playing
	return nil
}

func (s *Sink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != sink.Playing {
		return nil
	}
	s.player.Pause()
	s.state = sink.Paused
	return nil
}

func (s *Sink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != sink.Paused {
		return nil
	}
	s.player.Play()
	s.state = sink.Playing
	return nil
}

func (s *Sink) Stop(immediate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if immediate {
		s.queue = nil
	}
	s.player.Pause()
	s.state = sink.Stopped
	return nil
}

func (s *Sink) State() sink.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SubmitBuffer enqueues 16-bit PCM for the next StrobeQueue to drain.
// Volume/pan are applied here, on the producer side, so the device
// write goroutine never touches sample data.
func (s *Sink) SubmitBuffer(buf []byte) error {
	if err := sink.ValidateBuffer(buf, s.blockAlign); err != nil {
		return err
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	s.applyVolumeAndPan(cp)

	s.mu.Lock()
	s.queue = append(s.queue, cp)
	s.mu.Unlock()
	return nil
}

func (s *Sink) PendingBufferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// StrobeQueue drains one queued buffer to the device on its own
// goroutine, so a slow or blocked oto Player never stalls the caller
// (the stream manager's single worker goroutine, §5), then signals
// BufferNeeded if the queue has fallen to the low-water mark.
func (s *Sink) StrobeQueue() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	buf := s.queue[0]
	s.queue = s.queue[1:]
	remaining := len(s.queue)
	onNeeded := s.onNeeded
	s.mu.Unlock()

	go func() {
		if _, err := s.pw.Write(buf); err != nil {
			s.mu.Lock()
			s.writeErr = err
			s.mu.Unlock()
		}
	}()

	if remaining <= lowWaterMark && onNeeded != nil {
		onNeeded()
	}
}

func (s *Sink) SetBufferNeededHandler(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNeeded = fn
}

func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Sink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *Sink) Pan() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pan
}

func (s *Sink) SetPan(p float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pan = p
}

// Pitch is observable only: the stream engine's Non-goal on resampling
// (SPEC_FULL.md §11.3) means pitch is stored for callers to read but
// never applied as a playback-rate change.
func (s *Sink) Pitch() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch
}

func (s *Sink) SetPitch(p float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitch = p
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.pw.Close()
	return s.player.Close()
}

// applyVolumeAndPan mirrors the applyGain helper duplicated across the
// teacher's playback.go/speaker.go, generalized to split gain across
// channels for pan on stereo output.
func (s *Sink) applyVolumeAndPan(buf []byte) {
	samples := sample.BytesToInt16(buf)
	if s.volume != 1.0 {
		sample.ApplyGain(samples, s.volume)
	}
	if s.channels == 2 && s.pan != 0 {
		left, right := 1.0, 1.0
		if s.pan > 0 {
			left = 1.0 - s.pan
		} else {
			right = 1.0 + s.pan
		}
		for i := 0; i+1 < len(samples); i += 2 {
			l := samples[i : i+1]
			r := samples[i+1 : i+2]
			sample.ApplyGain(l, left)
			sample.ApplyGain(r, right)
		}
	}
	copy(buf, sample.Int16ToBytes(samples))
}
