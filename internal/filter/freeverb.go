package filter

import (
	"time"

	"github.com/absoluteAquarian/monosound/internal/fader"
)

const (
	freeverbBitFrozen      = 0
	freeverbBitFeedback    = 1
	freeverbBitDampness    = 2
	freeverbBitStereoWidth = 3
)

// Classic Schroeder/Moorer Freeverb tuning constants, as ported by
// Jari Komppa into SoLoud (§4.5). Lengths are in samples at 44100Hz
// and scaled by sampleRate/44100 on allocation.
var (
	combTuningLeft       = [8]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuningLeft    = [4]int{556, 441, 341, 225}
	freeverbStereoSpread = 23
)

const (
	freeverbFixedGain       = 0.015
	freeverbScaleWet        = 3.0
	freeverbScaleDry        = 2.0
	freeverbScaleDamp       = 0.4
	freeverbScaleRoom       = 0.28
	freeverbOffsetRoom      = 0.7
	freeverbAllpassFeedback = 0.5
)

type combFilter struct {
	buf      []float64
	idx      int
	store    float64
	feedback float64
	damp     float64
}

func (c *combFilter) process(input float64) float64 {
	out := c.buf[c.idx]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.idx] = input + c.store*c.feedback
	c.idx++
	if c.idx >= len(c.buf) {
		c.idx = 0
	}
	return out
}

type allpassFilter struct {
	buf      []float64
	idx      int
	feedback float64
}

func (a *allpassFilter) process(input float64) float64 {
	bufout := a.buf[a.idx]
	out := -input + bufout
	a.buf[a.idx] = input + bufout*a.feedback
	a.idx++
	if a.idx >= len(a.buf) {
		a.idx = 0
	}
	return out
}

// FreeverbInstance is the eight-comb/four-allpass stereo reverb (§4.5).
// It requires exactly 2 channels; via RequiredChannelCount the stream
// package skips it on a non-stereo block and reports
// ErrFilterChannelMismatch.
type FreeverbInstance struct {
	*base

	frozen      *fader.BoolParameter
	feedback    *fader.Parameter[float64]
	dampness    *fader.Parameter[float64]
	stereoWidth *fader.Parameter[float64]

	combs     [2][8]combFilter
	allpasses [2][4]allpassFilter
	gain      float64
}

func newFreeverbInstance() *FreeverbInstance {
	f := &FreeverbInstance{base: newBase()}
	f.frozen = fader.NewBoolParameter(false, &f.Mask, freeverbBitFrozen)
	f.feedback = fader.NewParameter[float64](0.5, 0, 1, &f.Mask, freeverbBitFeedback)
	f.dampness = fader.NewParameter[float64](0.5, 0, 1, &f.Mask, freeverbBitDampness)
	f.stereoWidth = fader.NewParameter[float64](1, 0, 1, &f.Mask, freeverbBitStereoWidth)
	return f
}

// NewFreeverbDefinition registers the Freeverb filter kind.
func NewFreeverbDefinition() *Definition {
	return NewDefinition(Freeverb, "Freeverb", newFreeverbInstance(), cloneFreeverb)
}

func cloneFreeverb(s Instance) Instance {
	src := s.(*FreeverbInstance)
	dst := newFreeverbInstance()
	src.copyBaseInto(dst.base)
	src.frozen.CopyTo(dst.frozen)
	dst.frozen.Rewire(&dst.Mask, freeverbBitFrozen)
	src.feedback.CopyTo(dst.feedback)
	dst.feedback.Rewire(&dst.Mask, freeverbBitFeedback)
	src.dampness.CopyTo(dst.dampness)
	dst.dampness.Rewire(&dst.Mask, freeverbBitDampness)
	src.stereoWidth.CopyTo(dst.stereoWidth)
	dst.stereoWidth.Rewire(&dst.Mask, freeverbBitStereoWidth)
	return dst
}

// Frozen returns the frozen flag: when set, reverb tails sustain
// forever and no new input is admitted.
func (f *FreeverbInstance) Frozen() *fader.BoolParameter { return f.frozen }

// Feedback returns the room-size parameter.
func (f *FreeverbInstance) Feedback() *fader.Parameter[float64] { return f.feedback }

// Dampness returns the high-frequency damping parameter.
func (f *FreeverbInstance) Dampness() *fader.Parameter[float64] { return f.dampness }

// StereoWidth returns the stereo width parameter.
func (f *FreeverbInstance) StereoWidth() *fader.Parameter[float64] { return f.stereoWidth }

// RequiredChannelCount overrides base's default: Freeverb is stereo-only.
func (f *FreeverbInstance) RequiredChannelCount() int { return 2 }

func (f *FreeverbInstance) UpdateParameterFaders(now time.Duration) {
	f.feedback.ApplyFader(now)
	f.dampness.ApplyFader(now)
	f.stereoWidth.ApplyFader(now)
}

func (f *FreeverbInstance) BeginFiltering(channelCount, channelSize, sampleRate int) {
	if channelCount != 2 {
		return
	}

	realloc := f.needsReallocate(channelCount, sampleRate)
	changed := f.HasAnyParameterChanged()

	if realloc {
		f.allocateBuffers(sampleRate)
	}
	if realloc || changed {
		f.recomputeCoefficients()
	}
}

func (f *FreeverbInstance) allocateBuffers(sampleRate int) {
	scale := float64(sampleRate) / 44100.0
	for ch := 0; ch < 2; ch++ {
		spread := 0
		if ch == 1 {
			spread = freeverbStereoSpread
		}
		for i := 0; i < 8; i++ {
			length := int(float64(combTuningLeft[i]+spread) * scale)
			if length < 1 {
				length = 1
			}
			f.combs[ch][i] = combFilter{buf: make([]float64, length)}
		}
		for i := 0; i < 4; i++ {
			length := int(float64(allpassTuningLeft[i]+spread) * scale)
			if length < 1 {
				length = 1
			}
			f.allpasses[ch][i] = allpassFilter{buf: make([]float64, length), feedback: freeverbAllpassFeedback}
		}
	}
}

func (f *FreeverbInstance) recomputeCoefficients() {
	frozen := f.frozen.Value()
	roomSize := f.feedback.Value()
	damp := f.dampness.Value()
	gain := freeverbFixedGain
	if frozen {
		roomSize, damp, gain = 1, 0, 0
	}

	combFeedback := roomSize*freeverbScaleRoom + freeverbOffsetRoom
	if frozen {
		// SoLoud sets comb feedback to exactly 1.0 when frozen so the
		// reverb tail sustains forever instead of slowly decaying.
		combFeedback = 1.0
	}
	combDamp := damp * freeverbScaleDamp
	for ch := range f.combs {
		for i := range f.combs[ch] {
			f.combs[ch][i].feedback = combFeedback
			f.combs[ch][i].damp = combDamp
		}
	}
	f.gain = gain
}

// ApplyFilteringToAllChannels overrides the default per-channel loop:
// Freeverb's comb/allpass network mixes L and R on every sample.
func (f *FreeverbInstance) ApplyFilteringToAllChannels(buf []float64, offset, sampleCount, channelCount, channelSize, sampleRate int) {
	if channelCount != 2 {
		return
	}

	wet := f.Strength() * freeverbScaleWet
	dry := (1 - f.Strength()) * freeverbScaleDry
	width := f.stereoWidth.Value()
	wetLeft := wet * (width/2 + 0.5)
	wetRight := wet * ((1 - width) / 2)
	frozen := f.frozen.Value()
	gain := f.gain

	lStart := 0*channelSize + offset
	rStart := 1*channelSize + offset
	L := buf[lStart : lStart+sampleCount]
	R := buf[rStart : rStart+sampleCount]

	for i := 0; i < sampleCount; i++ {
		inL, inR := L[i], R[i]
		input := (inL + inR) * gain
		if frozen {
			input = 0
		}

		var outL, outR float64
		for c := 0; c < 8; c++ {
			outL += f.combs[0][c].process(input)
			outR += f.combs[1][c].process(input)
		}
		for a := 0; a < 4; a++ {
			outL = f.allpasses[0][a].process(outL)
			outR = f.allpasses[1][a].process(outR)
		}

		L[i] = outL*wetLeft + outR*wetRight + inL*dry
		R[i] = outR*wetLeft + outL*wetRight + inR*dry
	}
}
