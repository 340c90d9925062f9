package sample

import "testing"

// TestPCM16ToFloatPreservesSign guards against the sign-flip regression
// where ToFloat's negative branch applied an extra negation on top of
// an already-positive denominator.
func TestPCM16ToFloatPreservesSign(t *testing.T) {
	cases := []struct {
		v    PCM16
		want float64
	}{
		{0, 0},
		{32767, 1.0},
		{-32768, -1.0},
		{-100, -100.0 / 32768.0},
		{100, 100.0 / 32767.0},
	}
	for _, c := range cases {
		if got := c.v.ToFloat(); got != c.want {
			t.Errorf("PCM16(%d).ToFloat() = %v, want %v", c.v, got, c.want)
		}
	}
}

// TestPCM16RoundTrip is §8 property 1: fromFloat(toFloat(v)) == v for
// every representable PCM16 value.
func TestPCM16RoundTrip(t *testing.T) {
	for v := -32768; v <= 32767; v++ {
		orig := PCM16(v)
		got, err := PCM16FromFloat(orig.ToFloat())
		if err != nil {
			t.Fatalf("PCM16FromFloat(%v): %v", orig.ToFloat(), err)
		}
		if got != orig {
			t.Fatalf("round trip mismatch: v=%d toFloat=%v fromFloat=%d", v, orig.ToFloat(), got)
		}
	}
}

func TestPCM24ToFloatPreservesSign(t *testing.T) {
	cases := []struct {
		v    PCM24
		want float64
	}{
		{0, 0},
		{maxPos24, 1.0},
		{-minNeg24, -1.0},
		{-100, -100.0 / float64(minNeg24)},
	}
	for _, c := range cases {
		if got := c.v.ToFloat(); got != c.want {
			t.Errorf("PCM24(%d).ToFloat() = %v, want %v", c.v, got, c.want)
		}
	}
}

// TestPCM24RoundTrip is §8 property 1 for the 24-bit variant, sampled
// rather than exhaustive given the 2^24 domain size.
func TestPCM24RoundTrip(t *testing.T) {
	step := 997 // odd stride, avoids only testing multiples of a power of two
	for v := -minNeg24; v < maxPos24; v += step {
		orig := PCM24(v)
		got, err := PCM24FromFloat(orig.ToFloat())
		if err != nil {
			t.Fatalf("PCM24FromFloat(%v): %v", orig.ToFloat(), err)
		}
		if got != orig {
			t.Fatalf("round trip mismatch: v=%d toFloat=%v fromFloat=%d", v, orig.ToFloat(), got)
		}
	}
}
