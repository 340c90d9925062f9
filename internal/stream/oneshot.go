package stream

import (
	"fmt"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
)

// ApplyFilterChainOnce runs raw PCM16 once through chain, matching §2's
// one-shot-effect control flow: "the full WAV is decoded, passed once
// through the chain, and handed to the caller as raw PCM" — the same
// deinterleave/filter/clamp core a live stream's processFiltersLocked
// runs per block, minus the read-ahead queue, sink, and FFT tap that
// only apply to a stream.
func ApplyFilterChainOnce(format decoder.Format, raw []byte, chain []filter.Instance, onError func(error)) []byte {
	channels := format.Channels
	deinterleaved := sample.BytesToFloat64(raw, channels)
	channelSize := len(deinterleaved[0])

	flat := make([]float64, channels*channelSize)
	for c := range deinterleaved {
		copy(flat[c*channelSize:(c+1)*channelSize], deinterleaved[c])
	}

	applyFilterChainFlat(flat, channels, channelSize, format.SampleRate, 0, chain, onError)

	out := make([][]float64, channels)
	for c := range out {
		out[c] = flat[c*channelSize : (c+1)*channelSize]
	}
	return sample.Float64ToBytes(out)
}

// applyFilterChainFlat runs chain over a channel-major flat buffer in
// place and clamps the result to [-1,1]; shared by the per-block
// stream path and the one-shot path above.
func applyFilterChainFlat(flat []float64, channels, channelSize, sampleRate int, now time.Duration, chain []filter.Instance, onError func(error)) {
	for _, inst := range chain {
		if req := inst.RequiredChannelCount(); req != 0 && req != channels {
			if onError != nil {
				onError(fmt.Errorf("filter requires %d channels, buffer has %d: %w", req, channels, monoerr.ErrFilterChannelMismatch))
			}
			continue
		}
		inst.UpdateParameterFaders(now)
		inst.BeginFiltering(channels, channelSize, sampleRate)
		inst.ApplyFilteringToAllChannels(flat, 0, channelSize, channels, channelSize, sampleRate)
	}

	for i, v := range flat {
		if v > 1.0 {
			flat[i] = 1.0
		} else if v < -1.0 {
			flat[i] = -1.0
		}
	}
}
