package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/absoluteAquarian/monosound/internal/decoder"
	"github.com/absoluteAquarian/monosound/internal/decoder/mp3"
	"github.com/absoluteAquarian/monosound/internal/decoder/vorbis"
	"github.com/absoluteAquarian/monosound/internal/decoder/wav"
	"github.com/absoluteAquarian/monosound/internal/decoder/xact"
	"github.com/absoluteAquarian/monosound/internal/decoder/xnb"
	"github.com/absoluteAquarian/monosound/internal/monoerr"
	"github.com/absoluteAquarian/monosound/internal/sink/oto"
	"github.com/absoluteAquarian/monosound/internal/stream"
)

// openDecoder picks a decoder constructor by file extension (§6.1,
// §6.3): the same dispatch-by-extension `loadWAV`/`loadMP3` switch
// tools/livekit-publisher/main.go runs before playback, generalized to
// every format in the decoder contract reachable from a plain file
// path (WAV, MP3, Ogg Vorbis, XNB). XACT WaveBank tracks need a
// pre-resolved {offset,length,format} triple instead of a path and are
// not reachable through this switch — see LoadXactTrack.
func openDecoder(path string) (decoder.Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: opening %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		dec, err := wav.New(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return dec, nil
	case ".mp3":
		dec, err := mp3.New(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return dec, nil
	case ".ogg":
		dec, err := vorbis.New(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return dec, nil
	case ".xnb":
		dec, err := xnb.New(f)
		f.Close() // xnb.New reads the whole payload up front; nothing left to stream from f.
		if err != nil {
			return nil, err
		}
		return dec, nil
	default:
		f.Close()
		return nil, fmt.Errorf("engine: %s: unrecognized extension %q: %w", path, filepath.Ext(path), monoerr.ErrUnsupportedFormat)
	}
}

// LoadStream opens path, builds a sink sized to the decoder's format,
// registers a stream.Package under basename (resolved to a unique name
// on collision per §4.7), and starts it playing at the engine's
// configured buffer depth. The returned name may differ from basename.
func (e *Engine) LoadStream(basename, path string, looping bool) (*stream.Package, string, error) {
	dec, err := openDecoder(path)
	if err != nil {
		return nil, "", err
	}

	format := dec.Format()
	snk, err := oto.New(format.SampleRate, format.Channels)
	if err != nil {
		dec.Dispose()
		return nil, "", fmt.Errorf("engine: building sink for %s: %w", path, err)
	}

	pkg, name := e.manager.Register(basename, func(name string) *stream.Package {
		p := stream.New(name, dec, snk, e.cfg.StreamBufferLengthInSeconds)
		p.SetIsLooping(looping)
		p.SetErrorHandler(func(err error) {
			e.logger.Warnw("stream error", "stream", name, "error", err)
		})
		return p
	})

	if err := pkg.Play(); err != nil {
		e.manager.Remove(name)
		pkg.Dispose()
		return nil, "", fmt.Errorf("engine: starting stream %s: %w", name, err)
	}

	e.logger.Infow("stream loaded", "stream", name, "path", path, "looping", looping,
		"sampleRate", format.SampleRate, "channels", format.Channels)
	return pkg, name, nil
}

// LoadXactTrack registers a stream over a single already-located track
// inside an XWB wave bank buffer (§6.3): the XWB/XSB container parse
// itself stays a named external collaborator per spec §1, so the
// caller supplies the resolved {offset, length, format} triple instead
// of a file path.
func (e *Engine) LoadXactTrack(basename string, waveBank []byte, offset, length int, format xact.TrackFormat, looping bool) (*stream.Package, string, error) {
	dec, err := xact.New(waveBank, offset, length, format)
	if err != nil {
		return nil, "", err
	}

	snk, err := oto.New(format.SampleRate, format.Channels)
	if err != nil {
		dec.Dispose()
		return nil, "", fmt.Errorf("engine: building sink for xact track: %w", err)
	}

	pkg, name := e.manager.Register(basename, func(name string) *stream.Package {
		p := stream.New(name, dec, snk, e.cfg.StreamBufferLengthInSeconds)
		p.SetIsLooping(looping)
		p.SetErrorHandler(func(err error) {
			e.logger.Warnw("stream error", "stream", name, "error", err)
		})
		return p
	})

	if err := pkg.Play(); err != nil {
		e.manager.Remove(name)
		pkg.Dispose()
		return nil, "", fmt.Errorf("engine: starting stream %s: %w", name, err)
	}

	e.logger.Infow("xact track loaded", "stream", name, "looping", looping,
		"sampleRate", format.SampleRate, "channels", format.Channels)
	return pkg, name, nil
}
