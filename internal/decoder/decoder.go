// Package decoder defines the Decoder contract (§6.1) every concrete
// format reader implements, plus the shared capability notion of
// "duration unknown".
package decoder

import (
	"math"
	"time"
)

// Unknown represents an unbounded/unknown MaxDuration (the spec's "∞
// if unknown"), used by decoders whose format gives no total-length
// hint up front (MP3) or whose underlying stream has none (dynamic).
const Unknown time.Duration = math.MaxInt64

// Format is a decoder's fixed sample geometry.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Decoder is the contract every concrete format reader (WAV, MP3,
// Vorbis, XNB, XACT, and the user-driven dynamic stream) implements.
// The stream package (§3.4) owns exactly one Decoder per stream and
// never calls ReadSamples concurrently with itself (§5's single-
// producer guarantee).
type Decoder interface {
	// Format returns the decoder's fixed sample geometry.
	Format() Format

	// TotalBytes returns the total decodable PCM byte count, or -1 if
	// unknown ahead of a full decode (MP3).
	TotalBytes() int64

	// MaxDuration returns the decodable duration, or Unknown.
	MaxDuration() time.Duration

	// ReadSamples decodes up to `seconds` worth of audio, returning
	// the PCM16 bytes produced, how many bytes were read, and whether
	// end-of-stream was reached (checkLoop).
	ReadSamples(seconds float64) (data []byte, bytesRead int, checkLoop bool, err error)

	// Seek moves the read cursor to an absolute time offset. Decoders
	// that cannot seek (MP3) return an error wrapping
	// monoerr.ErrUnsupportedOperation.
	Seek(seconds float64) error

	// Reset rewinds to the start of the sample data. Unlike Seek, this
	// must succeed for every decoder in the capability table except
	// the user-driven dynamic stream.
	Reset() error

	// Dispose releases any resources (open files, decoder state).
	Dispose() error
}
