// Package dynamic implements the user-driven decoder behind C9's
// dynamic stream (§4.10): "a stream package whose decoder is the
// user." Grounded on the mp3 decoder's shape (forward-only, no seek,
// duration unknown) minus the file I/O, since a dynamic stream has no
// underlying medium to rewind.
package dynamic

import (
	"fmt"
	"time"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// ReadFunc is the user-overridable readSamples hook (§4.10): given a
// requested duration, it returns raw PCM16 bytes. An empty buffer (nil
// or zero-length, with a nil error) signals end-of-stream: handleLooping
// marks the stream finished. The stream is not removed from the
// manager's registry.
type ReadFunc func(seconds float64) ([]byte, error)

// Decoder adapts a user-supplied ReadFunc to the decoder.Decoder
// contract. Seek and Reset are locked off (§4.10: "does not support
// seeking or looping").
type Decoder struct {
	format decoder.Format
	read   ReadFunc
}

// New constructs a dynamic decoder over the given fixed sample
// geometry and read callback.
func New(format decoder.Format, read ReadFunc) *Decoder {
	return &Decoder{format: format, read: read}
}

func (d *Decoder) Format() decoder.Format { return d.format }

// TotalBytes is always unknown: a dynamic stream has no fixed length.
func (d *Decoder) TotalBytes() int64 { return -1 }

func (d *Decoder) MaxDuration() time.Duration { return decoder.Unknown }

func (d *Decoder) ReadSamples(seconds float64) ([]byte, int, bool, error) {
	buf, err := d.read(seconds)
	if err != nil {
		return nil, 0, true, fmt.Errorf("dynamic: read callback: %w", err)
	}
	if len(buf) == 0 {
		return nil, 0, true, nil
	}
	return buf, len(buf), false, nil
}

// Seek always fails: the dynamic stream has no seekable medium.
func (d *Decoder) Seek(seconds float64) error {
	return fmt.Errorf("dynamic: seek: %w", monoerr.ErrUnsupportedOperation)
}

// Reset always fails for the same reason as Seek.
func (d *Decoder) Reset() error {
	return fmt.Errorf("dynamic: reset: %w", monoerr.ErrUnsupportedOperation)
}

func (d *Decoder) Dispose() error { return nil }
