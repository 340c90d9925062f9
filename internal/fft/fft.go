// Package fft implements the FFT analysis pipeline (C8, §4.9): an
// in-place iterative Cooley-Tukey radix-2 transform over a copy of the
// post-filter sample block, plus RMS/dB graph views with static or
// decay-over-time rendering.
//
// The engine only ever runs the forward transform (analysis, never
// resynthesis); Inverse exists to make the fft(x)/ifft(x) identity
// (§8 property 10) checkable in tests.
package fft

import (
	"math"
	"math/cmplx"
)

// Transform runs the forward DFT in place, following the literal
// iterative formulation of §4.9: repeated halving with twiddle factor
// φT = φT², bit-reversal reshuffle, then 1/√N normalization.
func Transform(buf []complex128) {
	n := len(buf)
	if n <= 1 {
		return
	}

	k := n
	for k > 1 {
		m := k
		k >>= 1
		phiT := cmplx.Rect(1, -2*math.Pi/float64(m))
		t := complex(1, 0)
		for l := 0; l < k; l++ {
			for a := l; a < n; a += m {
				b := a + k
				u := buf[a] - buf[b]
				buf[a] += buf[b]
				buf[b] = u * t
			}
			t *= phiT
		}
	}

	bitReverse(buf)

	scale := complex(1/math.Sqrt(float64(n)), 0)
	for i := range buf {
		buf[i] *= scale
	}
}

// Inverse undoes Transform: conjugate, forward-transform, conjugate
// again. Both directions apply the same 1/√N scale, so the pair is
// unitary and recovers the original signal exactly (property 10).
func Inverse(buf []complex128) {
	for i := range buf {
		buf[i] = cmplx.Conj(buf[i])
	}
	Transform(buf)
	for i := range buf {
		buf[i] = cmplx.Conj(buf[i])
	}
}

func bitReverse(buf []complex128) {
	n := len(buf)
	bits := 0
	for 1<<bits < n {
		bits++
	}
	for a := range buf {
		b := reverseBits(a, bits)
		if b > a {
			buf[a], buf[b] = buf[b], buf[a]
		}
	}
}

func reverseBits(v, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// FrequencyAxis returns freq[i] = i * sampleRate / (N/2) / 2 for
// i in [0, N/2], the half-spectrum bin-to-Hz mapping of §4.9.
func FrequencyAxis(n, sampleRate int) []float64 {
	half := n / 2
	out := make([]float64, half+1)
	for i := 0; i <= half; i++ {
		out[i] = float64(i) * float64(sampleRate) / float64(half) / 2
	}
	return out
}

// Magnitudes returns |X[i]| for the half-spectrum i in [0, N/2],
// feeding both the RMS graph (used directly) and the dB graph
// (20*ln of this value).
func Magnitudes(buf []complex128) []float64 {
	half := len(buf) / 2
	out := make([]float64, half+1)
	for i := 0; i <= half; i++ {
		out[i] = cmplx.Abs(buf[i])
	}
	return out
}
