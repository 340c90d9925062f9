package filter

import (
	"math"
	"time"

	"github.com/absoluteAquarian/monosound/internal/fader"
)

// BiquadType selects which transfer function the filter computes.
type BiquadType int

const (
	LowPass BiquadType = iota
	BandPass
	HighPass
)

const (
	biquadBitType       = 0
	biquadBitFrequency  = 1
	biquadBitResonance  = 2
)

// BiquadInstance is a second-order IIR filter with resonance control
// (§4.3), the "Biquad Resonant" filter named in the spec.
type BiquadInstance struct {
	*base

	typ        *fader.Discrete[int]
	frequency  *fader.Parameter[float64]
	resonance  *fader.Parameter[float64]

	// Cached transfer-function coefficients, recomputed on parameter
	// or sample-rate change.
	a0, a1, a2 float64
	b1, b2     float64

	// Per-channel state: x[channel] = {x0,x1,x2}, y[channel] = {y0,y1}.
	x [][3]float64
	y [][2]float64
}

func newBiquadInstance() *BiquadInstance {
	b := &BiquadInstance{base: newBase()}
	b.typ = fader.NewDiscrete[int](int(LowPass), &b.Mask, biquadBitType)
	b.frequency = fader.NewParameter[float64](2000, 10, 8000, &b.Mask, biquadBitFrequency)
	b.resonance = fader.NewParameter[float64](2, 0.1, 20, &b.Mask, biquadBitResonance)
	return b
}

// NewBiquadDefinition registers the Biquad Resonant filter kind.
func NewBiquadDefinition() *Definition {
	return NewDefinition(BiquadResonant, "BiquadResonant", newBiquadInstance(), cloneBiquad)
}

func cloneBiquad(s Instance) Instance {
	src := s.(*BiquadInstance)
	dst := newBiquadInstance()
	src.copyBaseInto(dst.base)
	src.typ.CopyTo(dst.typ)
	dst.typ.Rewire(&dst.Mask, biquadBitType)
	src.frequency.CopyTo(dst.frequency)
	dst.frequency.Rewire(&dst.Mask, biquadBitFrequency)
	src.resonance.CopyTo(dst.resonance)
	dst.resonance.Rewire(&dst.Mask, biquadBitResonance)
	return dst
}

// Type returns the configured filter type.
func (b *BiquadInstance) Type() BiquadType { return BiquadType(b.typ.Value()) }

// SetType changes the filter type, marking coefficients for recompute.
func (b *BiquadInstance) SetType(t BiquadType) { b.typ.Set(int(t)) }

// Frequency returns the cutoff/center frequency parameter.
func (b *BiquadInstance) Frequency() *fader.Parameter[float64] { return b.frequency }

// Resonance returns the Q/resonance parameter.
func (b *BiquadInstance) Resonance() *fader.Parameter[float64] { return b.resonance }

func (b *BiquadInstance) UpdateParameterFaders(now time.Duration) {
	b.frequency.ApplyFader(now)
	b.resonance.ApplyFader(now)
}

func (b *BiquadInstance) BeginFiltering(channelCount, channelSize, sampleRate int) {
	realloc := b.needsReallocate(channelCount, sampleRate)
	changed := b.HasAnyParameterChanged()
	if realloc {
		b.x = make([][3]float64, channelCount)
		b.y = make([][2]float64, channelCount)
	}
	if realloc || changed {
		b.recomputeCoefficients(sampleRate)
	}
}

func (b *BiquadInstance) recomputeCoefficients(sampleRate int) {
	omega := 2 * math.Pi * b.frequency.Value() / float64(sampleRate)
	sinw, cosw := math.Sincos(omega)
	alpha := sinw / (2 * b.resonance.Value())
	s := 1 / (1 + alpha)

	switch b.Type() {
	case LowPass:
		b.a0 = (1 - cosw) / 2 * s
		b.a1 = (1 - cosw) * s
		b.a2 = (1 - cosw) / 2 * s
	case BandPass:
		b.a0 = alpha * s
		b.a1 = 0
		b.a2 = -alpha * s
	case HighPass:
		b.a0 = (1 + cosw) / 2 * s
		b.a1 = -(1 + cosw) * s
		b.a2 = (1 + cosw) / 2 * s
	}
	b.b1 = -2 * cosw * s
	b.b2 = (1 - alpha) * s
}

// ApplyFilter implements ChannelFilterer for a single channel.
func (b *BiquadInstance) ApplyFilter(channelBuf []float64, channel, sampleRate int) {
	x := &b.x[channel]
	y := &b.y[channel]
	strength := b.Strength()

	for i, s := range channelBuf {
		x[0] = s
		y0 := b.a0*x[0] + b.a1*x[1] + b.a2*x[2] - b.b1*y[0] - b.b2*y[1]
		channelBuf[i] = s + (y0-s)*strength
		x[2], x[1] = x[1], x[0]
		y[1] = y[0]
		y[0] = y0
	}
}

func (b *BiquadInstance) ApplyFilteringToAllChannels(buf []float64, offset, sampleCount, channelCount, channelSize, sampleRate int) {
	DefaultApplyAllChannels(b, buf, offset, sampleCount, channelCount, channelSize, sampleRate)
}
