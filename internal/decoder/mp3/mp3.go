// Package mp3 implements the MP3 decoder: forward-only, duration
// unknown ahead of a full decode, matching go-mp3's own design.
// Grounded on the teacher's MP3 playback path in playback.go, which
// wraps hajimehoshi/go-mp3 the same way and never attempts to seek it.
package mp3

import (
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// Decoder wraps a go-mp3 stream. go-mp3 always produces interleaved
// stereo 16-bit PCM regardless of the source's channel count.
type Decoder struct {
	src        io.ReadSeeker
	dec        *gomp3.Decoder
	sampleRate int
}

// New wraps src, which must support Seek so Reset can rewind and
// re-open the decoder (go-mp3 itself exposes no seek/rewind API).
func New(src io.ReadSeeker) (*Decoder, error) {
	dec, err := gomp3.NewDecoder(src)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	return &Decoder{src: src, dec: dec, sampleRate: dec.SampleRate()}, nil
}

func (d *Decoder) Format() decoder.Format {
	return decoder.Format{SampleRate: d.sampleRate, Channels: 2, BitsPerSample: 16}
}

// TotalBytes is unknown ahead of a full decode (go-mp3 computes it
// lazily via Length(), which itself decodes the whole stream; the
// capability table marks MP3 Duration "✗" so callers must not rely on
// this for seeking math).
func (d *Decoder) TotalBytes() int64 { return -1 }

func (d *Decoder) MaxDuration() time.Duration { return decoder.Unknown }

func (d *Decoder) ReadSamples(seconds float64) ([]byte, int, bool, error) {
	const frameSize = 4 // stereo, 16-bit
	want := int(seconds * float64(d.sampleRate) * frameSize)
	want -= want % frameSize
	if want <= 0 {
		return nil, 0, false, fmt.Errorf("mp3: requested to read zero samples: %w", monoerr.ErrInternalAssert)
	}

	buf := make([]byte, want)
	n, err := io.ReadFull(d.dec, buf)
	if n == 0 {
		if err != nil {
			return nil, 0, true, nil
		}
	}
	checkLoop := err == io.ErrUnexpectedEOF || err == io.EOF
	return buf[:n], n, checkLoop, nil
}

// Seek is unsupported for MP3 (§9 "MP3 capability gap").
func (d *Decoder) Seek(seconds float64) error {
	return fmt.Errorf("mp3: arbitrary seek: %w", monoerr.ErrUnsupportedOperation)
}

// Reset rewinds the underlying stream and builds a fresh go-mp3
// decoder, since go-mp3 offers no native rewind.
func (d *Decoder) Reset() error {
	if _, err := d.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("mp3: reset: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	dec, err := gomp3.NewDecoder(d.src)
	if err != nil {
		return fmt.Errorf("mp3: reset: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	d.dec = dec
	return nil
}

func (d *Decoder) Dispose() error { return nil }
