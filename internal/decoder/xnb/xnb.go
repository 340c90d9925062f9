// Package xnb implements the compressed SoundEffect decoder (§6.3):
// parse the XNB container header, inflate its LZ4 payload (LZX is
// rejected as unsupported), then read the fixed SoundEffect content
// layout into an in-memory WavContainer reused by the WAV decoder's
// slicing logic.
package xnb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/decoder/wav"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sample"
)

const (
	flagLZX = 0x80
	flagLZ4 = 0x40
)

// New parses r as an XNB-wrapped SoundEffect and returns a decoder
// backed by the inflated PCM (the same in-memory slicing the WAV
// decoder uses, since a SoundEffect is PCM data once decompressed).
func New(r io.Reader) (decoder.Decoder, error) {
	header := make([]byte, 6)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("xnb: read header: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	if string(header[0:3]) != "XNB" {
		return nil, fmt.Errorf("xnb: bad magic: %w", monoerr.ErrUnsupportedFormat)
	}
	version := header[4]
	if version != 4 && version != 5 {
		return nil, fmt.Errorf("xnb: unsupported version %d: %w", version, monoerr.ErrUnsupportedFormat)
	}
	flags := header[5]

	var lengthBuf [4]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return nil, fmt.Errorf("xnb: read total length: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	totalLength := binary.LittleEndian.Uint32(lengthBuf[:])

	var payload []byte
	switch {
	case flags&flagLZX != 0:
		return nil, fmt.Errorf("xnb: LZX compression: %w", monoerr.ErrUnsupportedFormat)
	case flags&flagLZ4 != 0:
		var decompLenBuf [4]byte
		if _, err := io.ReadFull(r, decompLenBuf[:]); err != nil {
			return nil, fmt.Errorf("xnb: read decompressed size: %w: %v", monoerr.ErrDecoderFailure, err)
		}
		decompressedSize := binary.LittleEndian.Uint32(decompLenBuf[:])
		if totalLength < 14 {
			return nil, fmt.Errorf("xnb: total length too small: %w", monoerr.ErrDecoderFailure)
		}
		compressed := make([]byte, totalLength-14)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("xnb: read compressed payload: %w: %v", monoerr.ErrDecoderFailure, err)
		}
		out := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, fmt.Errorf("xnb: lz4 decompress: %w: %v", monoerr.ErrDecoderFailure, err)
		}
		payload = out[:n]
	default:
		if totalLength < 10 {
			return nil, fmt.Errorf("xnb: total length too small: %w", monoerr.ErrDecoderFailure)
		}
		rest := make([]byte, totalLength-10)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, fmt.Errorf("xnb: read payload: %w: %v", monoerr.ErrDecoderFailure, err)
		}
		payload = rest
	}

	return parseSoundEffect(payload)
}

// parseSoundEffect reads the fixed XNA ContentReader layout for
// SoundEffect: a WAVEFORMATEX-shaped format block, the PCM data block,
// then loopStart/loopLength/durationMs fields the stream engine does
// not currently consume (the spec is compatibility-locked to PCM, so
// loop metadata from the container is ignored in favor of the
// explicit Segment model, §3.5).
func parseSoundEffect(payload []byte) (decoder.Decoder, error) {
	r := bytes.NewReader(payload)

	var formatLen uint32
	if err := binary.Read(r, binary.LittleEndian, &formatLen); err != nil {
		return nil, fmt.Errorf("xnb: read format length: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	formatBlock := make([]byte, formatLen)
	if _, err := io.ReadFull(r, formatBlock); err != nil {
		return nil, fmt.Errorf("xnb: read format block: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	if formatLen < 16 {
		return nil, fmt.Errorf("xnb: format block too short: %w", monoerr.ErrDecoderFailure)
	}
	formatTag := binary.LittleEndian.Uint16(formatBlock[0:2])
	if formatTag != 1 {
		return nil, fmt.Errorf("xnb: formatTag %d is not PCM: %w", formatTag, monoerr.ErrUnsupportedFormat)
	}
	channels := binary.LittleEndian.Uint16(formatBlock[2:4])
	sampleRate := binary.LittleEndian.Uint32(formatBlock[4:8])
	blockAlign := binary.LittleEndian.Uint16(formatBlock[12:14])
	bitsPerSample := binary.LittleEndian.Uint16(formatBlock[14:16])

	var dataLen uint32
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("xnb: read data length: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("xnb: read data: %w: %v", monoerr.ErrDecoderFailure, err)
	}

	container := &sample.WavContainer{
		Channels:      int(channels),
		SampleRate:    int(sampleRate),
		BitsPerSample: int(bitsPerSample),
		BlockAlign:    int(blockAlign),
		Data:          data,
	}
	if err := container.Validate(); err != nil {
		return nil, err
	}
	return wav.NewFromContainer(container), nil
}
