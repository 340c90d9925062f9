package filter

import "github.com/absoluteAquarian/monosound/internal/fader"

// strengthBit is the changed-bit index every concrete filter reserves
// for its paramStrength parameter, keeping the low bits free for each
// filter's own kind-specific parameters.
const strengthBit = 63

// base holds the plumbing every concrete FilterInstance shares: the
// changed-bit mask, the always-present paramStrength parameter, and
// the last-seen channel/rate bookkeeping used to decide when
// per-channel DSP state needs reallocating.
type base struct {
	Mask          fader.ChangeMask
	paramStrength *fader.Parameter[float64]

	lastChannelCount int
	lastSampleRate   int
}

func newBase() *base {
	b := &base{}
	b.paramStrength = fader.NewParameter[float64](1, 0, 1, &b.Mask, strengthBit)
	return b
}

func (b *base) Strength() float64    { return b.paramStrength.Value() }
func (b *base) SetStrength(v float64) { b.paramStrength.Set(v) }

// HasAnyParameterChanged atomically reads and clears the mask.
func (b *base) HasAnyParameterChanged() bool { return b.Mask.TestAndClear() }

// RequiredChannelCount defaults to "no restriction"; Freeverb overrides it.
func (b *base) RequiredChannelCount() int { return 0 }

// needsReallocate reports whether channelCount or sampleRate differ
// from the last BeginFiltering call, and records the new values.
func (b *base) needsReallocate(channelCount, sampleRate int) bool {
	changed := channelCount != b.lastChannelCount || sampleRate != b.lastSampleRate
	b.lastChannelCount = channelCount
	b.lastSampleRate = sampleRate
	return changed
}

// copyBaseInto clones paramStrength's value into dst's own strength
// parameter (rewired to dst's mask), matching the singleton->instance
// copy semantics of fader.Parameter.CopyTo.
func (b *base) copyBaseInto(dst *base) {
	b.paramStrength.CopyTo(dst.paramStrength)
	dst.paramStrength.Rewire(&dst.Mask, strengthBit)
}
