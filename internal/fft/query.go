package fft

import (
	"sync"
	"time"

	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// Query is the attachable FFT tap a stream package feeds a copy of
// its post-filter float block (§3.4 fftQuery, §4.9 query lifecycle).
// It is active while producing; a Graph may only pull from it while
// inactive and while fresh data is present.
type Query struct {
	mu sync.Mutex

	sampleRate int
	size       int

	active      bool
	fresh       bool
	magnitudes  []float64
	populatedAt time.Time
}

// NewQuery builds a query over blocks of length size (must be a power
// of two; §4.9 requires the caller to zero-pad otherwise).
func NewQuery(size, sampleRate int) *Query {
	return &Query{sampleRate: sampleRate, size: size}
}

// Begin marks the query active: a populate is in flight.
func (q *Query) Begin() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active = true
}

// End marks the query inactive, allowing a Graph to pull.
func (q *Query) End() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active = false
}

func (q *Query) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Populate runs the forward transform over samples (real-valued,
// length == Query size) and stores the resulting half-spectrum
// magnitudes, timestamped now.
func (q *Query) Populate(samples []float64, now time.Time) error {
	if len(samples) != q.size {
		return monoerr.ErrInvalidParameter
	}

	buf := make([]complex128, q.size)
	for i, s := range samples {
		buf[i] = complex(s, 0)
	}
	Transform(buf)
	mags := Magnitudes(buf)

	q.mu.Lock()
	q.magnitudes = mags
	q.populatedAt = now
	q.fresh = true
	q.mu.Unlock()
	return nil
}

// TakeMagnitudes returns the most recently populated half-spectrum and
// its timestamp, consuming the freshness flag, only if the query is
// not currently active.
func (q *Query) TakeMagnitudes() ([]float64, time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active || !q.fresh {
		return nil, time.Time{}, false
	}
	q.fresh = false
	out := make([]float64, len(q.magnitudes))
	copy(out, q.magnitudes)
	return out, q.populatedAt, true
}

// FrequencyAxis returns this query's bin-to-Hz mapping.
func (q *Query) FrequencyAxis() []float64 {
	return FrequencyAxis(q.size, q.sampleRate)
}
