package sample

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/absoluteAquarian/monosound/internal/monoerr"
)

// WavContainer holds a fully-parsed RIFF/WAVE PCM payload (§3.2).
type WavContainer struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	ByteRate      int
	BlockAlign    int
	Data          []byte
}

// Validate checks the §3.2 invariants.
func (w *WavContainer) Validate() error {
	if w.Channels != 1 && w.Channels != 2 {
		return fmt.Errorf("wav: channels %d: %w", w.Channels, monoerr.ErrUnsupportedFormat)
	}
	if w.SampleRate < 8000 || w.SampleRate > 48000 {
		return fmt.Errorf("wav: sampleRate %d: %w", w.SampleRate, monoerr.ErrUnsupportedFormat)
	}
	if w.BitsPerSample != 16 && w.BitsPerSample != 24 {
		return fmt.Errorf("wav: bitsPerSample %d: %w", w.BitsPerSample, monoerr.ErrUnsupportedFormat)
	}
	wantByteRate := w.SampleRate * w.Channels * w.BitsPerSample / 8
	if w.ByteRate != 0 && w.ByteRate != wantByteRate {
		return fmt.Errorf("wav: byteRate mismatch: %w", monoerr.ErrDecoderFailure)
	}
	w.ByteRate = wantByteRate
	wantBlockAlign := w.Channels * w.BitsPerSample / 8
	if w.BlockAlign != 0 && w.BlockAlign != wantBlockAlign {
		return fmt.Errorf("wav: blockAlign mismatch: %w", monoerr.ErrDecoderFailure)
	}
	w.BlockAlign = wantBlockAlign
	if w.BlockAlign == 0 || len(w.Data)%w.BlockAlign != 0 {
		return fmt.Errorf("wav: data length %d not a multiple of blockAlign %d: %w", len(w.Data), w.BlockAlign, monoerr.ErrDecoderFailure)
	}
	return nil
}

// DurationSeconds returns the playback duration of Data.
func (w *WavContainer) DurationSeconds() float64 {
	if w.ByteRate == 0 {
		return 0
	}
	return float64(len(w.Data)) / float64(w.ByteRate)
}

// ReadWavContainer parses a RIFF/WAVE stream into a WavContainer,
// skipping unknown subchunks. Grounded on loadWAV in
// tools/livekit-publisher/main.go and the chunk loop in playback.go's
// playWAV, generalized to accept 24-bit PCM (the teacher only handles
// 16-bit) and to report the byte offset of the "data" payload so a
// seekable decoder can compute sampleReadStart (§3.4).
func ReadWavContainer(r io.Reader) (*WavContainer, int64, error) {
	br := bufio.NewReader(r)
	var consumed int64

	header := make([]byte, 12)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, 0, fmt.Errorf("wav: read riff header: %w: %v", monoerr.ErrDecoderFailure, err)
	}
	consumed += 12
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("wav: not a RIFF/WAVE stream: %w", monoerr.ErrDecoderFailure)
	}

	w := &WavContainer{}
	haveFmt, haveData := false, false
	var dataOffset int64

	for !haveData {
		chunkHdr := make([]byte, 8)
		if _, err := io.ReadFull(br, chunkHdr); err != nil {
			return nil, 0, fmt.Errorf("wav: read chunk header: %w: %v", monoerr.ErrDecoderFailure, err)
		}
		consumed += 8
		id := string(chunkHdr[0:4])
		size := binary.LittleEndian.Uint32(chunkHdr[4:8])

		switch id {
		case "fmt ":
			buf := make([]byte, size)
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, 0, fmt.Errorf("wav: read fmt chunk: %w: %v", monoerr.ErrDecoderFailure, err)
			}
			consumed += int64(size)
			if size%2 == 1 {
				br.ReadByte()
				consumed++
			}
			if size < 16 {
				return nil, 0, fmt.Errorf("wav: fmt chunk too short: %w", monoerr.ErrDecoderFailure)
			}
			audioFormat := binary.LittleEndian.Uint16(buf[0:2])
			if audioFormat != 1 {
				return nil, 0, fmt.Errorf("wav: audioFormat %d not PCM: %w", audioFormat, monoerr.ErrUnsupportedFormat)
			}
			w.Channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			w.SampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			w.ByteRate = int(binary.LittleEndian.Uint32(buf[8:12]))
			w.BlockAlign = int(binary.LittleEndian.Uint16(buf[12:14]))
			w.BitsPerSample = int(binary.LittleEndian.Uint16(buf[14:16]))
			haveFmt = true
		case "data":
			dataOffset = consumed
			buf := make([]byte, size)
			if _, err := io.ReadFull(br, buf); err != nil && err != io.ErrUnexpectedEOF {
				return nil, 0, fmt.Errorf("wav: read data chunk: %w: %v", monoerr.ErrDecoderFailure, err)
			}
			w.Data = buf
			haveData = true
		default:
			if _, err := io.CopyN(io.Discard, br, int64(size)); err != nil {
				return nil, 0, fmt.Errorf("wav: skip chunk %q: %w: %v", id, monoerr.ErrDecoderFailure, err)
			}
			consumed += int64(size)
			if size%2 == 1 {
				br.ReadByte()
				consumed++
			}
		}
	}

	if !haveFmt {
		return nil, 0, fmt.Errorf("wav: missing fmt chunk: %w", monoerr.ErrDecoderFailure)
	}
	if err := w.Validate(); err != nil {
		return nil, 0, err
	}
	return w, dataOffset, nil
}

// WriteWavContainer serializes w as a canonical 44-byte-header RIFF/WAVE
// PCM file, used by the engine's LogFilters one-shot path (§6.4) to
// persist filtered one-shot effects to LogDirectory.
func WriteWavContainer(w io.Writer, c *WavContainer) error {
	dataLen := uint32(len(c.Data))
	riffLen := 36 + dataLen

	bw := bufio.NewWriter(w)
	bw.WriteString("RIFF")
	binary.Write(bw, binary.LittleEndian, riffLen)
	bw.WriteString("WAVE")

	bw.WriteString("fmt ")
	binary.Write(bw, binary.LittleEndian, uint32(16))
	binary.Write(bw, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(bw, binary.LittleEndian, uint16(c.Channels))
	binary.Write(bw, binary.LittleEndian, uint32(c.SampleRate))
	binary.Write(bw, binary.LittleEndian, uint32(c.ByteRate))
	binary.Write(bw, binary.LittleEndian, uint16(c.BlockAlign))
	binary.Write(bw, binary.LittleEndian, uint16(c.BitsPerSample))

	bw.WriteString("data")
	binary.Write(bw, binary.LittleEndian, dataLen)
	bw.Write(c.Data)

	return bw.Flush()
}

// ConvertPCM24ToPCM16 downconverts a 24-bit PCM payload to 16-bit by
// truncating the low byte of each sample, per §3.1 ("PCM24 <-> PCM16
// conversion: treated as a utility").
func ConvertPCM24ToPCM16(data []byte) []byte {
	n := len(data) / 3
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		// Little-endian 24-bit sample; drop the least-significant byte.
		out[i*2] = data[i*3+1]
		out[i*2+1] = data[i*3+2]
	}
	return out
}

// ConvertPCM16ToPCM24 upconverts a 16-bit PCM payload to 24-bit by
// padding the low byte with zero.
func ConvertPCM16ToPCM24(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		out[i*3] = 0
		out[i*3+1] = data[i*2]
		out[i*3+2] = data[i*2+1]
	}
	return out
}
