// Package fader implements the bounded Parameter + Fader model that
// every filter parameter (§4.1) is built from: a clamped numeric value,
// an optional linear/LFO fade animation, and a changed-bit that a DSP
// thread can drain atomically.
package fader

import "go.uber.org/atomic"

// ChangeMask tracks which parameter indices (0-63) have written a new
// value since it was last drained. A FilterInstance owns exactly one
// ChangeMask shared by all of its parameters.
//
// Grounded on the teacher's use of go.uber.org/atomic (pulled in
// transitively through the LiveKit SDK in every cloud-livekit-bridge
// go.mod) for cross-goroutine counters; here it is exercised directly
// rather than transitively, since the control thread sets bits while
// the DSP thread drains them (§3.3's "read-and-clear via an atomic
// exchange on the DSP thread").
type ChangeMask struct {
	bits atomic.Uint64
}

// Set marks bit as changed. Safe for concurrent use with TestAndClear.
func (m *ChangeMask) Set(bit uint) {
	for {
		old := m.bits.Load()
		next := old | (uint64(1) << bit)
		if next == old || m.bits.CAS(old, next) {
			return
		}
	}
}

// TestAndClear atomically reads the mask and resets it to zero,
// reporting whether any bit was set. This is hasAnyParameterChanged.
func (m *ChangeMask) TestAndClear() bool {
	return m.bits.Swap(0) != 0
}
