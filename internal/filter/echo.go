package filter

import (
	"math"
	"time"

	"github.com/absoluteAquarian/monosound/internal/fader"
)

const (
	echoBitDelay = 0
	echoBitDecay = 1
	echoBitBias  = 2
)

// EchoInstance is a per-channel circular-buffer delay line (§4.4).
// maxBufferLength is fixed from delay·sampleRate on the first
// BeginFiltering call and never grows afterward; usableBufferLength
// may shrink/grow within that ceiling as delay changes later.
type EchoInstance struct {
	*base

	delay *fader.Parameter[float64]
	decay *fader.Parameter[float64]
	bias  *fader.Parameter[float64]

	maxBufferLength    int
	usableBufferLength int

	buffers [][]float64
	offsets []int
}

func newEchoInstance() *EchoInstance {
	e := &EchoInstance{base: newBase()}
	e.delay = fader.NewParameter[float64](0.3, 0.001, 10, &e.Mask, echoBitDelay)
	e.decay = fader.NewParameter[float64](0.7, 0, 1, &e.Mask, echoBitDecay)
	e.bias = fader.NewParameter[float64](0, 0, 1, &e.Mask, echoBitBias)
	return e
}

// NewEchoDefinition registers the Echo filter kind.
func NewEchoDefinition() *Definition {
	return NewDefinition(Echo, "Echo", newEchoInstance(), cloneEcho)
}

func cloneEcho(s Instance) Instance {
	src := s.(*EchoInstance)
	dst := newEchoInstance()
	src.copyBaseInto(dst.base)
	src.delay.CopyTo(dst.delay)
	dst.delay.Rewire(&dst.Mask, echoBitDelay)
	src.decay.CopyTo(dst.decay)
	dst.decay.Rewire(&dst.Mask, echoBitDecay)
	src.bias.CopyTo(dst.bias)
	dst.bias.Rewire(&dst.Mask, echoBitBias)
	return dst
}

// Delay returns the echo delay parameter, in seconds.
func (e *EchoInstance) Delay() *fader.Parameter[float64] { return e.delay }

// Decay returns the echo decay (feedback) parameter.
func (e *EchoInstance) Decay() *fader.Parameter[float64] { return e.decay }

// Bias returns the echo bias parameter.
func (e *EchoInstance) Bias() *fader.Parameter[float64] { return e.bias }

func (e *EchoInstance) UpdateParameterFaders(now time.Duration) {
	e.delay.ApplyFader(now)
	e.decay.ApplyFader(now)
	e.bias.ApplyFader(now)
}

func (e *EchoInstance) BeginFiltering(channelCount, channelSize, sampleRate int) {
	if e.maxBufferLength == 0 {
		e.maxBufferLength = int(math.Ceil(e.delay.Value() * float64(sampleRate)))
		if e.maxBufferLength < 1 {
			e.maxBufferLength = 1
		}
	}

	realloc := e.needsReallocate(channelCount, sampleRate)
	changed := e.HasAnyParameterChanged()

	if realloc {
		e.buffers = make([][]float64, channelCount)
		e.offsets = make([]int, channelCount)
		for c := range e.buffers {
			e.buffers[c] = make([]float64, e.maxBufferLength)
		}
	}

	if realloc || changed {
		usable := int(math.Ceil(e.delay.Value() * float64(sampleRate)))
		if usable > e.maxBufferLength {
			usable = e.maxBufferLength
		}
		if usable < 1 {
			usable = 1
		}
		e.usableBufferLength = usable
	}
}

// ApplyFilter implements ChannelFilterer for a single channel.
func (e *EchoInstance) ApplyFilter(channelBuf []float64, channel, sampleRate int) {
	buf := e.buffers[channel]
	usable := e.usableBufferLength
	decay := e.decay.Value()
	bias := e.bias.Value()
	strength := e.Strength()
	i := e.offsets[channel]

	for idx, s := range channelBuf {
		prevEcho := buf[(i+usable-1)%usable]
		echo := bias*prevEcho + (1-bias)*buf[i]
		out := s + echo*decay
		buf[i] = out
		channelBuf[idx] = s + (out-s)*strength
		i = (i + 1) % usable
	}

	e.offsets[channel] = i
}

func (e *EchoInstance) ApplyFilteringToAllChannels(buf []float64, offset, sampleCount, channelCount, channelSize, sampleRate int) {
	DefaultApplyAllChannels(e, buf, offset, sampleCount, channelCount, channelSize, sampleRate)
}
