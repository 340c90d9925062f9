package fft

import (
	"math"
	"time"
)

// ViewKind selects which magnitude rendering a Graph exposes (§4.9).
type ViewKind int

const (
	RMS ViewKind = iota
	DB
)

// RenderMode selects how a Graph's extracted points relate to the
// underlying query's raw magnitudes.
type RenderMode int

const (
	Static RenderMode = iota
	DecayOverTime
)

// Graph renders a Query's magnitudes as either an RMS or dB view,
// either verbatim (Static) or as a decaying peak envelope
// (DecayOverTime).
type Graph struct {
	kind        ViewKind
	mode        RenderMode
	decayFactor float64

	peak        []float64
	peakSetAt   time.Time
	hasPeak     bool
}

// NewGraph builds a Graph. decayFactor is only meaningful for
// DecayOverTime and must be in (0, 1).
func NewGraph(kind ViewKind, mode RenderMode, decayFactor float64) *Graph {
	return &Graph{kind: kind, mode: mode, decayFactor: decayFactor}
}

func (g *Graph) view(mags []float64) []float64 {
	out := make([]float64, len(mags))
	switch g.kind {
	case DB:
		for i, m := range mags {
			out[i] = 20 * math.Log(m)
		}
	default:
		copy(out, mags)
	}
	return out
}

// Extract pulls fresh data from query, if any is available (the query
// is inactive and has not already been consumed). Returns ok=false
// with no side effect if nothing fresh is present.
func (g *Graph) Extract(query *Query) ([]float64, bool) {
	mags, populatedAt, ok := query.TakeMagnitudes()
	if !ok {
		return nil, false
	}
	transformed := g.view(mags)

	if g.mode == Static {
		return transformed, true
	}

	if !g.hasPeak {
		g.peak = transformed
		g.peakSetAt = populatedAt
		g.hasPeak = true
		out := make([]float64, len(g.peak))
		copy(out, g.peak)
		return out, true
	}

	dt := populatedAt.Sub(g.peakSetAt).Seconds()
	if dt < 0 {
		dt = 0
	}
	decay := math.Pow(g.decayFactor, dt)

	for i := range g.peak {
		decayed := g.peak[i] * decay
		if transformed[i] > decayed {
			g.peak[i] = transformed[i]
		} else {
			g.peak[i] = decayed
		}
	}
	g.peakSetAt = populatedAt

	out := make([]float64, len(g.peak))
	copy(out, g.peak)
	return out, true
}
