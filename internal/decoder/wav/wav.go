// Package wav implements the WAV/PCM decoder (§6.1, §6.3): fully
// seekable and duration-complete, since the whole container is parsed
// into memory up front the way loadWAV in
// tools/livekit-publisher/main.go reads a complete file before play.
package wav

import (
	"fmt"
	"io"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
)

// Decoder reads PCM directly out of an in-memory WavContainer.
type Decoder struct {
	container *sample.WavContainer
	cursor    int
}

// New parses r as a RIFF/WAVE PCM stream.
func New(r io.Reader) (*Decoder, error) {
	container, _, err := sample.ReadWavContainer(r)
	if err != nil {
		return nil, err
	}
	if container.BitsPerSample != 16 {
		// The stream engine's filter/sink pipeline is 16-bit only
		// (§4.6 processFilters); downconvert once at load time.
		container.Data = sample.ConvertPCM24ToPCM16(container.Data)
		container.BitsPerSample = 16
		container.ByteRate = container.SampleRate * container.Channels * 2
		container.BlockAlign = container.Channels * 2
	}
	return &Decoder{container: container}, nil
}

// NewFromContainer builds a decoder directly from an already-parsed
// WavContainer (used by the XNB decoder, whose payload is PCM once
// inflated but never passes through RIFF framing).
func NewFromContainer(container *sample.WavContainer) *Decoder {
	return &Decoder{container: container}
}

func (d *Decoder) Format() decoder.Format {
	return decoder.Format{
		SampleRate:    d.container.SampleRate,
		Channels:      d.container.Channels,
		BitsPerSample: d.container.BitsPerSample,
	}
}

func (d *Decoder) TotalBytes() int64 { return int64(len(d.container.Data)) }

func (d *Decoder) MaxDuration() time.Duration {
	return time.Duration(d.container.DurationSeconds() * float64(time.Second))
}

func (d *Decoder) ReadSamples(seconds float64) ([]byte, int, bool, error) {
	want := int(seconds * float64(d.container.ByteRate))
	want -= want % d.container.BlockAlign
	if want <= 0 {
		return nil, 0, false, fmt.Errorf("wav: requested to read zero samples: %w", monoerr.ErrInternalAssert)
	}

	remaining := len(d.container.Data) - d.cursor
	if remaining <= 0 {
		return nil, 0, true, nil
	}
	if want > remaining {
		want = remaining - remaining%d.container.BlockAlign
		if want <= 0 {
			return nil, 0, true, nil
		}
	}

	out := d.container.Data[d.cursor : d.cursor+want]
	d.cursor += want
	checkLoop := d.cursor >= len(d.container.Data)
	return out, want, checkLoop, nil
}

func (d *Decoder) Seek(seconds float64) error {
	pos := int(seconds * float64(d.container.ByteRate))
	pos -= pos % d.container.BlockAlign
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.container.Data) {
		pos = len(d.container.Data)
	}
	d.cursor = pos
	return nil
}

func (d *Decoder) Reset() error {
	d.cursor = 0
	return nil
}

func (d *Decoder) Dispose() error { return nil }
