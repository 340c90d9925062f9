// Package loopctl implements the segmented-loop controller (C7, §3.5,
// §4.8): a decorator over a seekable decoder that repeats a middle
// section of a track indefinitely until told to let the track finish.
package loopctl

import "time"

// Kind tags a Segment's position in the loop graph.
type Kind int

const (
	Start Kind = iota
	Middle
	End
)

// Segment is one span of the loop graph. An End segment's End field
// is resolved to the decoder's max duration when the Tracker is
// constructed (§4.8: "End has its end patched to maxDuration at
// initialization").
type Segment struct {
	Start, End time.Duration
	Kind       Kind
}
