// Package xact implements the XACT WaveBank track decoder (§6.3): the
// engine resolves a track's offset/length/format out of the external
// XWB/XSB container; this package only slices that already-loaded
// buffer and hands it to the same in-memory decoder the WAV package
// uses, since a wave bank entry is raw PCM once located.
package xact

import (
	"fmt"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/decoder/wav"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
)

// TrackFormat mirrors the per-track format fields an XWB entry
// carries in its own header.
type TrackFormat struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// New builds a decoder over waveBank[offset : offset+length].
func New(waveBank []byte, offset, length int, format TrackFormat) (decoder.Decoder, error) {
	if offset < 0 || length < 0 || offset+length > len(waveBank) {
		return nil, fmt.Errorf("xact: track range [%d,%d) out of bounds for a %d-byte wave bank: %w",
			offset, offset+length, len(waveBank), monoerr.ErrDecoderFailure)
	}

	container := &sample.WavContainer{
		Channels:      format.Channels,
		SampleRate:    format.SampleRate,
		BitsPerSample: format.BitsPerSample,
		Data:          waveBank[offset : offset+length],
	}
	if err := container.Validate(); err != nil {
		return nil, err
	}
	return wav.NewFromContainer(container), nil
}
