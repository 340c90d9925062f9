// Package stream implements the per-stream state machine (C5, §3.4,
// §4.6): a decoder feeding a filter chain feeding a sink, with its own
// read-ahead queue and an optional segmented-loop controller.
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/fft"
	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/loopctl"
	"github.com/absoluteAquarian/monosound/internal/sink"
)

// MinBufferSeconds and MaxBufferSeconds are the §6.4 clamp bounds for
// streamBufferLengthInSeconds.
const (
	MinBufferSeconds = 1.0 / 500
	MaxBufferSeconds = 1.0 / 10

	// defaultQueueTargetDepth is the §3.4 target read-ahead depth.
	defaultQueueTargetDepth = 3
)

// ClampBufferSeconds enforces the §6.4 bound on a per-read duration.
func ClampBufferSeconds(v float64) float64 {
	if v < MinBufferSeconds {
		return MinBufferSeconds
	}
	if v > MaxBufferSeconds {
		return MaxBufferSeconds
	}
	return v
}

// FocusBehavior selects how a stream reacts to application focus loss
// (§4.6).
type FocusBehavior int

const (
	KeepPlaying FocusBehavior = iota
	PauseOnLostFocus
)

// Package is one live playback stream: owns its decoder, filter
// chain, read queue, and sink (§3.4). The manager (C6) only ever
// touches it through this type's exported methods.
type Package struct {
	mu sync.Mutex

	name string
	dec  decoder.Decoder
	snk  sink.Sink

	format          decoder.Format
	sampleReadStart int64 // byte offset of PCM data start; reset()'s seek target
	bufferSeconds   float64

	readBytes   int64
	secondsRead float64

	isLooping         bool
	loop              *loopctl.Tracker
	finishedStreaming bool
	disposed          bool

	// playTime is a nanosecond tick count, modified only via atomic
	// add/store (§3.4, §5): audibly elapsed time, advanced on buffer
	// drain, not on read-ahead.
	playTime int64

	readQueue         [][]byte
	queueTargetDepth  int
	submittedDurations []time.Duration
	previousPendingCount int
	pendingJumpSeconds   *float64

	filterChain []filter.Instance

	fftQuery     *fft.Query
	fftQuerySize int

	focusBehavior *FocusBehavior
	focusPause    bool

	// preSubmitHook, when set, transforms each processed block
	// immediately before it is queued for submission (§4.10's
	// preQueueBuffers hook point; the dynamic stream is its only user).
	preSubmitHook func([]byte) []byte

	onLooping  func()
	onFinished func()
	onError    func(error)
}

// New constructs a Package. bufferSeconds is clamped to §6.4's bounds.
func New(name string, dec decoder.Decoder, snk sink.Sink, bufferSeconds float64) *Package {
	p := &Package{
		name:             name,
		dec:              dec,
		snk:              snk,
		format:           dec.Format(),
		bufferSeconds:    ClampBufferSeconds(bufferSeconds),
		queueTargetDepth: defaultQueueTargetDepth,
	}
	snk.SetBufferNeededHandler(p.onBufferNeeded)
	return p
}

// AttachLoopTracker wires a segmented-loop controller (C7) into this
// stream; reset/looping decisions then defer to it.
func (p *Package) AttachLoopTracker(t *loopctl.Tracker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = t
}

// SetIsLooping sets the plain (non-segmented) loop flag.
func (p *Package) SetIsLooping(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isLooping = v
}

func (p *Package) SetOnLooping(fn func())   { p.mu.Lock(); defer p.mu.Unlock(); p.onLooping = fn }
func (p *Package) SetOnFinished(fn func())  { p.mu.Lock(); defer p.mu.Unlock(); p.onFinished = fn }
func (p *Package) SetErrorHandler(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

func (p *Package) Name() string { return p.name }

func (p *Package) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

func (p *Package) FinishedStreaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finishedStreaming
}

// Dispose releases the sink. The manager's worker skips a disposed
// stream on later ticks; it stays registered until Manager.Remove.
func (p *Package) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}
	p.disposed = true
	_ = p.snk.Close()
}

func (p *Package) State() sink.State { return p.snk.State() }
func (p *Package) Volume() float64   { return p.snk.Volume() }
func (p *Package) SetVolume(v float64) { p.snk.SetVolume(v) }
func (p *Package) Pan() float64      { return p.snk.Pan() }
func (p *Package) SetPan(v float64)  { p.snk.SetPan(v) }
func (p *Package) Pitch() float64    { return p.snk.Pitch() }
func (p *Package) SetPitch(v float64) { p.snk.SetPitch(v) }

// PlayTime returns the audibly elapsed play time (§3.4).
func (p *Package) PlayTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&p.playTime))
}

func (p *Package) byteRate() int { return p.format.SampleRate * p.format.Channels * 2 }

func (p *Package) bufferDuration(buf []byte) time.Duration {
	return time.Duration(float64(len(buf)) / float64(p.byteRate()) * float64(time.Second))
}

// seekLocked seeks the decoder to seconds and resyncs read-position
// bookkeeping to match. Caller must hold p.mu.
func (p *Package) seekLocked(seconds float64) error {
	if err := p.dec.Seek(seconds); err != nil {
		return err
	}
	p.readBytes = int64(seconds * float64(p.byteRate()))
	p.secondsRead = seconds
	return nil
}

func (p *Package) Play() error {
	p.mu.Lock()
	err := p.snk.Play()
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.onBufferNeeded()
	return nil
}

func (p *Package) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snk.Pause()
}

func (p *Package) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snk.Resume()
}

// Stop delegates to the sink and resets read state (§4.6).
func (p *Package) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.snk.Stop(true); err != nil {
		return err
	}

	if p.loop != nil {
		p.loop.Reset()
		if err := p.seekLocked(p.loop.LoopTargetTime().Seconds()); err != nil {
			return err
		}
	} else if err := p.seekLocked(float64(p.sampleReadStart) / float64(p.byteRate())); err != nil {
		return err
	}

	p.readQueue = nil
	p.submittedDurations = nil
	p.previousPendingCount = 0
	p.pendingJumpSeconds = nil
	atomic.StoreInt64(&p.playTime, 0)
	return nil
}

// Reset seeks back to sampleReadStart (or, for a segmented-loop
// stream, to the tracker's loop target, after resetting the tracker
// when the sink is stopped), optionally clears the queue, and zeroes
// playTime if the sink is stopped (§4.6).
func (p *Package) Reset(clearQueue bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loop != nil {
		if p.snk.State() == sink.Stopped {
			p.loop.Reset()
		}
		if err := p.seekLocked(p.loop.LoopTargetTime().Seconds()); err != nil {
			return err
		}
	} else if err := p.seekLocked(float64(p.sampleReadStart) / float64(p.byteRate())); err != nil {
		return err
	}

	if clearQueue {
		p.readQueue = nil
		p.submittedDurations = nil
	}
	if p.snk.State() == sink.Stopped {
		atomic.StoreInt64(&p.playTime, 0)
	}
	return nil
}

// SetStreamPosition seeks the decoder and arms an immediate jump:
// playTime snaps to seconds only after the sink's currently pending
// buffers drain (§4.6).
func (p *Package) SetStreamPosition(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.dec.Seek(seconds); err != nil {
		return err
	}
	p.readBytes = int64(seconds * float64(p.byteRate()))
	p.secondsRead = seconds
	target := seconds
	p.pendingJumpSeconds = &target
	return nil
}

// BeginTrackingFft attaches an FFT query of the given block size
// (must be a power of two per §4.9) tapping channel 0 of the
// post-filter block.
func (p *Package) BeginTrackingFft(n int) *fft.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fftQuery = fft.NewQuery(n, p.format.SampleRate)
	p.fftQuerySize = n
	return p.fftQuery
}

func (p *Package) StopTrackingFft() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fftQuery = nil
	p.fftQuerySize = 0
}

// SetPreSubmitHook installs a transform run on every processed block
// just before it is queued (§4.10's preQueueBuffers hook point).
func (p *Package) SetPreSubmitHook(fn func([]byte) []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preSubmitHook = fn
}

// StrobeSink advances the sink's output pipeline by one tick (§4.7's
// worker loop: "if s.metrics.state == Playing: s.sink.strobeQueue()").
func (p *Package) StrobeSink() {
	p.snk.StrobeQueue()
}
