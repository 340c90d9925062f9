package stream

import (
	"fmt"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/decoder/dynamic"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
	"github.com/absoluteAquarian/monosound/internal/sink"
)

// PcmRequestMode selects which pre-submit hook preQueueBuffers invokes
// for a dynamic stream (§4.10).
type PcmRequestMode int

const (
	RequestByteBuffer PcmRequestMode = iota
	RequestWaveBuffer
)

// Dynamic wraps a Package whose decoder is user-supplied PCM rather
// than a file or container (C9, §4.10: "a stream package whose
// decoder is the user"). Seeking and looping are locked off.
type Dynamic struct {
	*Package

	mode             PcmRequestMode
	onPreSubmitBytes func([]byte)
	onPreSubmitWave  func([]int16)
}

// NewDynamic constructs a dynamic stream over a fixed sample geometry,
// invoking read(seconds) whenever the read-ahead queue needs more PCM.
func NewDynamic(name string, format decoder.Format, snk sink.Sink, bufferSeconds float64, read dynamic.ReadFunc) *Dynamic {
	dec := dynamic.New(format, read)
	p := New(name, dec, snk, bufferSeconds)
	d := &Dynamic{Package: p, mode: RequestByteBuffer}
	p.SetPreSubmitHook(d.preSubmit)
	return d
}

// SetRequestMode selects which of the two pre-submit hooks
// preQueueBuffers invokes for each processed block.
func (d *Dynamic) SetRequestMode(mode PcmRequestMode) { d.mode = mode }

// SetOnPreSubmitByteBuffer installs the raw-PCM pre-submit hook,
// active when the request mode is RequestByteBuffer.
func (d *Dynamic) SetOnPreSubmitByteBuffer(fn func([]byte)) { d.onPreSubmitBytes = fn }

// SetOnPreSubmitWaveBuffer installs the per-sample pre-submit hook,
// active when the request mode is RequestWaveBuffer.
func (d *Dynamic) SetOnPreSubmitWaveBuffer(fn func([]int16)) { d.onPreSubmitWave = fn }

func (d *Dynamic) preSubmit(buf []byte) []byte {
	switch d.mode {
	case RequestWaveBuffer:
		samples := sample.BytesToInt16(buf)
		if d.onPreSubmitWave != nil {
			d.onPreSubmitWave(samples)
		}
		return sample.Int16ToBytes(samples)
	default:
		if d.onPreSubmitBytes != nil {
			d.onPreSubmitBytes(buf)
		}
		return buf
	}
}

// SetStreamPosition always fails: a dynamic stream has no seekable
// medium to jump within (§4.10).
func (d *Dynamic) SetStreamPosition(seconds float64) error {
	return fmt.Errorf("dynamic: set stream position: %w", monoerr.ErrUnsupportedOperation)
}

// SetIsLooping always fails when asked to enable looping: a dynamic
// stream's end-of-data always finishes the stream, never loops (§4.10).
func (d *Dynamic) SetIsLooping(v bool) error {
	if v {
		return fmt.Errorf("dynamic: set is looping: %w", monoerr.ErrUnsupportedOperation)
	}
	return nil
}
