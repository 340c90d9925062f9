package fft

import (
	"math"
	"math/cmplx"
	"testing"
	"time"
)

func TestTransformInverseIdentity(t *testing.T) {
	const n = 64
	original := make([]complex128, n)
	for i := range original {
		original[i] = complex(math.Sin(float64(i)*0.37)+0.2*float64(i%3), 0)
	}

	buf := make([]complex128, n)
	copy(buf, original)

	Transform(buf)
	Inverse(buf)

	for i := range buf {
		if cmplx.Abs(buf[i]-original[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], original[i])
		}
	}
}

// TestTransformMagnitudesMatchKnownDFT guards against the halved-angle
// twiddle regression: for x=[1,1,0,0] the true DFT magnitudes are
// [2, sqrt(2), 0, sqrt(2)], scaled here by 1/sqrt(N).
func TestTransformMagnitudesMatchKnownDFT(t *testing.T) {
	buf := []complex128{1, 1, 0, 0}
	Transform(buf)

	scale := 1 / math.Sqrt(4)
	want := []float64{2 * scale, math.Sqrt(2) * scale, 0, math.Sqrt(2) * scale}
	for i, w := range want {
		if got := cmplx.Abs(buf[i]); math.Abs(got-w) > 1e-9 {
			t.Fatalf("bin %d: got %v, want %v", i, got, w)
		}
	}
}

func TestTransformSinePeakBin(t *testing.T) {
	const n = 256
	const sampleRate = 8000
	const freq = 1000.0

	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[i] = complex(math.Sin(2*math.Pi*freq*float64(i)/sampleRate), 0)
	}
	Transform(buf)
	mags := Magnitudes(buf)
	axis := FrequencyAxis(n, sampleRate)

	peak := 0
	for i := 1; i < len(mags); i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}

	wantBin := 0
	for i := range axis {
		if math.Abs(axis[i]-freq) < math.Abs(axis[wantBin]-freq) {
			wantBin = i
		}
	}

	if peak != wantBin {
		t.Fatalf("peak bin %d (freq %.1f) does not match nearest bin to %.1f Hz: bin %d (freq %.1f)",
			peak, axis[peak], freq, wantBin, axis[wantBin])
	}
}

func TestQueryGraphLifecycle(t *testing.T) {
	q := NewQuery(8, 8000)
	g := NewGraph(RMS, Static, 0.5)

	if _, ok := g.Extract(q); ok {
		t.Fatalf("Extract succeeded with no populated data")
	}

	q.Begin()
	samples := []float64{1, 0, -1, 0, 1, 0, -1, 0}
	if err := q.Populate(samples, time.Unix(0, 0)); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if _, ok := g.Extract(q); ok {
		t.Fatalf("Extract succeeded while query still active")
	}

	q.End()
	vals, ok := g.Extract(q)
	if !ok {
		t.Fatalf("Extract failed after query ended with fresh data")
	}
	if len(vals) != 5 {
		t.Fatalf("expected half-spectrum length 5 (N/2+1), got %d", len(vals))
	}

	if _, ok := g.Extract(q); ok {
		t.Fatalf("Extract succeeded a second time with no new populate")
	}
}

func TestGraphDecayOverTimeEnvelope(t *testing.T) {
	q := NewQuery(4, 8000)
	g := NewGraph(RMS, DecayOverTime, 0.5)

	q.Begin()
	q.Populate([]float64{1, 0, 0, 0}, time.Unix(0, 0))
	q.End()
	first, ok := g.Extract(q)
	if !ok {
		t.Fatalf("first Extract failed")
	}

	q.Begin()
	q.Populate([]float64{0, 0, 0, 0}, time.Unix(1, 0))
	q.End()
	second, ok := g.Extract(q)
	if !ok {
		t.Fatalf("second Extract failed")
	}

	if second[0] >= first[0] {
		t.Fatalf("expected decay to reduce the peak over 1s: first=%v second=%v", first, second)
	}
	if second[0] <= 0 {
		t.Fatalf("expected decay to leave a nonzero residual: %v", second[0])
	}
}
