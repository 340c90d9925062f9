package wav

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildTestWav(t *testing.T, channels, sampleRate, bits int, frames int) []byte {
	t.Helper()
	blockAlign := channels * bits / 8
	dataLen := frames * blockAlign
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	data := make([]byte, dataLen)
	for i := range data {
		data[i] = byte(i)
	}
	buf.Write(data)
	return buf.Bytes()
}

func TestReadSamplesTrimsToBlockAlign(t *testing.T) {
	raw := buildTestWav(t, 2, 44100, 16, 1000)
	d, err := New(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, n, _, err := d.ReadSamples(0.001) // ~44.1 samples worth of time
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if n%d.container.BlockAlign != 0 {
		t.Fatalf("bytesRead %d is not a multiple of blockAlign %d", n, d.container.BlockAlign)
	}
	if len(out) != n {
		t.Fatalf("returned slice length %d does not match bytesRead %d", len(out), n)
	}
}

func TestSeekIdentity(t *testing.T) {
	raw := buildTestWav(t, 1, 44100, 16, 44100)
	d, err := New(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Seek(0.5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	first, _, _, err := d.ReadSamples(0.01)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}

	// Read from an unrelated position, then seek back to 0.5s again.
	if err := d.Seek(0.9); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	d.ReadSamples(0.01)

	if err := d.Seek(0.5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	second, _, _, err := d.ReadSamples(0.01)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("seeking to the same time twice produced different bytes")
	}
}

func TestResetReturnsToStart(t *testing.T) {
	raw := buildTestWav(t, 1, 44100, 16, 44100)
	d, err := New(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start, _, _, _ := d.ReadSamples(0.01)
	d.ReadSamples(0.5)
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	again, _, _, _ := d.ReadSamples(0.01)

	if !bytes.Equal(start, again) {
		t.Fatalf("Reset did not return to the start of sample data")
	}
}

func Test24BitDownconvertedTo16(t *testing.T) {
	raw := buildTestWav(t, 1, 44100, 24, 100)
	d, err := New(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Format().BitsPerSample != 16 {
		t.Fatalf("expected the decoder to normalize 24-bit input to 16-bit, got %d", d.Format().BitsPerSample)
	}
}
