// Package monoerr defines the sentinel error kinds shared across MonoSound
// components (§7 of the specification). Call sites wrap one of these with
// fmt.Errorf("...: %w", sentinel) the way the teacher's gRPC bridge wraps
// transport errors in service.go/playback.go.
package monoerr

import "errors"

var (
	// ErrNotInitialized is returned for operations attempted before the
	// engine (or a stream/filter owned by it) has been constructed.
	ErrNotInitialized = errors.New("monosound: not initialized")

	// ErrDecoderFailure indicates a decoder could not parse the bytes it
	// was given as the declared container format.
	ErrDecoderFailure = errors.New("monosound: decoder failure")

	// ErrUnsupportedFormat indicates a structurally valid but unsupported
	// container variant (wrong channel count, bit depth, compression).
	ErrUnsupportedFormat = errors.New("monosound: unsupported format")

	// ErrInvalidParameter indicates an out-of-range value at a public API
	// boundary.
	ErrInvalidParameter = errors.New("monosound: invalid parameter")

	// ErrFilterWrongType indicates a filter lookup-by-id resolved to an
	// instance of a different concrete filter kind than requested.
	ErrFilterWrongType = errors.New("monosound: filter wrong type")

	// ErrFilterChannelMismatch indicates a filter was applied to a stream
	// whose channel count it cannot process (e.g. Freeverb on mono).
	ErrFilterChannelMismatch = errors.New("monosound: filter channel mismatch")

	// ErrAudioHardwareMissing indicates sink construction failed because
	// no audio output device is available.
	ErrAudioHardwareMissing = errors.New("monosound: audio hardware missing")

	// ErrInternalAssert indicates a broken internal invariant; it should
	// never surface in correct use of the library.
	ErrInternalAssert = errors.New("monosound: internal assertion failed")

	// ErrUnsupportedOperation indicates a decoder capability gap, such as
	// seeking on a sequential-only MP3 stream.
	ErrUnsupportedOperation = errors.New("monosound: unsupported operation")
)
