package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absoluteAquarian/monosound/internal/config"
	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/sample"
)

func writeTestWav(t *testing.T, dir, name string, samples []int16) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	container := &sample.WavContainer{
		Channels:      1,
		SampleRate:    8000,
		BitsPerSample: 16,
		ByteRate:      8000 * 2,
		BlockAlign:    2,
		Data:          sample.Int16ToBytes(samples),
	}
	if err := sample.WriteWavContainer(f, container); err != nil {
		t.Fatalf("WriteWavContainer: %v", err)
	}
	return path
}

func TestNewBuildsAFullyWiredEngine(t *testing.T) {
	cfg := config.Default()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if e.Filters() == nil {
		t.Fatalf("expected a non-nil filter registry")
	}
	if e.Manager() == nil {
		t.Fatalf("expected a non-nil stream manager")
	}
	if e.Logger() == nil {
		t.Fatalf("expected a non-nil logger")
	}
	if e.Config() != cfg {
		t.Fatalf("Config() = %+v, want %+v", e.Config(), cfg)
	}
}

func TestPlayOneShotDecodesFiltersAndReturnsPcm(t *testing.T) {
	dir := t.TempDir()
	samples := []int16{100, -200, 300, -400, 500}
	path := writeTestWav(t, dir, "effect.wav", samples)

	e, err := New(config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	out, err := e.PlayOneShot(path, nil)
	if err != nil {
		t.Fatalf("PlayOneShot: %v", err)
	}

	got := sample.BytesToInt16(out)
	if len(got) != len(samples) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestPlayOneShotSkipsChannelMismatchedFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWav(t, dir, "mono.wav", []int16{1, 2, 3, 4})

	e, err := New(config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	freeverb, err := e.Filters().CreateInstance(filter.Freeverb)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	_, err = e.PlayOneShot(path, []filter.Instance{freeverb})
	if err != nil {
		t.Fatalf("PlayOneShot should not fail outright on a mismatched filter: %v", err)
	}
}

func TestPlayOneShotWritesFilteredWavWhenLoggingEnabled(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	path := writeTestWav(t, dir, "effect.wav", []int16{10, 20, 30, 40})

	cfg := config.Default()
	cfg.LogFilters = true
	cfg.LogDirectory = logDir

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if _, err := e.PlayOneShot(path, nil); err != nil {
		t.Fatalf("PlayOneShot: %v", err)
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one dumped wav, found %d", len(entries))
	}
}

func TestOpenDecoderRejectsUnrecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.flac")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := openDecoder(path); err == nil {
		t.Fatalf("expected an error for an unrecognized extension")
	}
}
