package fader

import "time"

// Parameter is a bounded numeric value driven either by direct writes
// or by its own Fader, wired into an owner's ChangeMask at a fixed bit
// index so the control thread's writes are visible to a DSP thread via
// a single atomic exchange (§3.3).
type Parameter[T Numeric] struct {
	value T
	Min   T
	Max   T
	Fader Fader[T]

	mask *ChangeMask
	bit  uint
}

// NewParameter builds a parameter clamped to [min,max], wired to bit in
// mask. mask may be nil for standalone/test use.
func NewParameter[T Numeric](initial, min, max T, mask *ChangeMask, bit uint) *Parameter[T] {
	p := &Parameter[T]{Min: min, Max: max, mask: mask, bit: bit}
	p.value = clamp(initial, min, max)
	return p
}

func clamp[T Numeric](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Value returns the parameter's current clamped value.
func (p *Parameter[T]) Value() T { return p.value }

// writeThrough clamps v, stores it, and sets the changed bit only if
// the stored value actually changed.
func (p *Parameter[T]) writeThrough(v T) {
	v = clamp(v, p.Min, p.Max)
	if v != p.value {
		p.value = v
		if p.mask != nil {
			p.mask.Set(p.bit)
		}
	}
}

// Set assigns v directly (the public API write path): clamps, sets the
// changed bit on an actual change, and resets the fader to Inactive.
func (p *Parameter[T]) Set(v T) {
	p.writeThrough(v)
	p.Fader.Stop()
}

// ApplyFader advances the owned fader to now and, if it produced a new
// value, writes it through without touching the fader itself.
func (p *Parameter[T]) ApplyFader(now time.Duration) {
	if p.Fader.Update(now) {
		p.writeThrough(p.Fader.Current)
	}
}

// StartLinearFade begins a linear fade from the parameter's current
// value to to, completing after duration.
func (p *Parameter[T]) StartLinearFade(to T, now, duration time.Duration) {
	p.Fader.StartLinear(p.value, to, now, duration)
}

// StartLFOFade begins an LFO oscillating between from and to.
func (p *Parameter[T]) StartLFOFade(from, to T, now, period time.Duration) {
	p.Fader.StartLFO(from, to, now, period)
}

// CopyTo duplicates {value, min, max} and clones the fader state into
// other's own Fader (a plain struct copy: Fader[T] holds no pointers,
// so this is a full, independent clone per the spec's copyTo contract).
func (p *Parameter[T]) CopyTo(other *Parameter[T]) {
	other.value = p.value
	other.Min = p.Min
	other.Max = p.Max
	other.Fader = p.Fader
}

// Rewire repoints the parameter at a new owner's ChangeMask and bit.
// Used by FilterDefinition.createInstance() after CopyTo, since the
// clone must raise change-bits on the new instance's mask, not the
// singleton's.
func (p *Parameter[T]) Rewire(mask *ChangeMask, bit uint) {
	p.mask = mask
	p.bit = bit
}
