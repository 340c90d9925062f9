package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/sample"
	"github.com/absoluteAquarian/monosound/internal/stream"
)

// PlayOneShot implements §2's one-shot control flow: decode path fully,
// run the result once through chain, and hand the caller raw PCM16 —
// no sink, no queue, no stream registered with the manager. When
// cfg.LogFilters is set, the filtered buffer is additionally written
// to cfg.LogDirectory as a WAV for inspection, the way the original
// system's LogDirectory/LogFilters pair dumps filtered effects to
// disk.
func (e *Engine) PlayOneShot(path string, chain []filter.Instance) ([]byte, error) {
	dec, err := openDecoder(path)
	if err != nil {
		return nil, err
	}
	defer dec.Dispose()

	format := dec.Format()
	raw, err := readAll(dec)
	if err != nil {
		return nil, fmt.Errorf("engine: decoding %s: %w", path, err)
	}

	filtered := stream.ApplyFilterChainOnce(format, raw, chain, func(err error) {
		e.logger.Warnw("one-shot filter error", "path", path, "error", err)
	})

	if e.cfg.LogFilters && e.cfg.LogDirectory != "" {
		e.writeFilteredWav(path, format, filtered)
	}
	return filtered, nil
}

// readAll drains a decoder to end-of-stream in fixed-size chunks,
// since TotalBytes/MaxDuration may both be unknown ahead of time
// (MP3).
func readAll(dec decoder.Decoder) ([]byte, error) {
	const chunkSeconds = 5.0

	var out []byte
	for {
		chunk, _, done, err := dec.ReadSamples(chunkSeconds)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if done || len(chunk) == 0 {
			break
		}
	}
	return out, nil
}

// writeFilteredWav writes pcm (interleaved PCM16 at format's sample
// geometry) to cfg.LogDirectory, named after the source file.
func (e *Engine) writeFilteredWav(sourcePath string, format decoder.Format, pcm []byte) {
	if err := os.MkdirAll(e.cfg.LogDirectory, 0o755); err != nil {
		e.logger.Warnw("could not create log directory", "dir", e.cfg.LogDirectory, "error", err)
		return
	}

	name := filepath.Base(sourcePath) + ".filtered.wav"
	outPath := filepath.Join(e.cfg.LogDirectory, name)
	f, err := os.Create(outPath)
	if err != nil {
		e.logger.Warnw("could not write filtered wav", "path", outPath, "error", err)
		return
	}
	defer f.Close()

	container := &sample.WavContainer{
		Channels:      format.Channels,
		SampleRate:    format.SampleRate,
		BitsPerSample: 16,
		ByteRate:      format.SampleRate * format.Channels * 2,
		BlockAlign:    format.Channels * 2,
		Data:          pcm,
	}
	if err := sample.WriteWavContainer(f, container); err != nil {
		e.logger.Warnw("could not encode filtered wav", "path", outPath, "error", err)
	}
}
