// Package engine is the §9 Design Notes "explicitly constructed engine
// handle" that replaces the source's `MonoSoundLibrary` global mutable
// state: one Engine value owns the filter registry, the stream
// manager, and the telemetry logger/sink, the way
// cloud-livekit-bridge's service construction wires a logger and a
// session registry together at startup instead of reaching for package
// globals.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/absoluteAquarian/monosound/internal/config"
	"github.com/absoluteAquarian/monosound/internal/filter"
	"github.com/absoluteAquarian/monosound/internal/manager"
	"github.com/absoluteAquarian/monosound/internal/telemetry"
)

// Engine is the top-level handle a host application constructs once
// and shares across every LoadStream/PlayOneShot call.
type Engine struct {
	cfg     config.Config
	filters *filter.Registry
	manager *manager.Manager

	logger      *zap.SugaredLogger
	loggerFlush func()
	diag        *telemetry.Sink
}

// New constructs an Engine from cfg: a pre-populated filter registry
// (BiquadResonant, Echo, Freeverb), a stream manager running its
// background worker (§4.7), a structured logger (§10.1), and a
// diagnostics sink gated on cfg.LogFilters.
func New(cfg config.Config) (*Engine, error) {
	logger, flush, err := telemetry.NewLogger(false)
	if err != nil {
		return nil, fmt.Errorf("engine: building logger: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		filters:     filter.NewRegistry(),
		manager:     manager.New(cfg.DefaultStreamFocusBehavior),
		logger:      logger,
		loggerFlush: flush,
		diag: telemetry.NewSink(telemetry.SinkConfig{
			Enabled:       cfg.LogFilters,
			Directory:     cfg.LogDirectory,
			BatchSize:     20,
			FlushInterval: 0,
		}),
	}
	e.manager.SetPanicHandler(func(name string, r interface{}) {
		e.logger.Errorw("stream worker recovered from panic", "stream", name, "panic", r)
		e.diag.Log(telemetry.Entry{Message: "panic recovered", Stream: name, Error: fmt.Sprint(r)})
	})

	e.logger.Infow("engine constructed",
		"bufferSeconds", cfg.StreamBufferLengthInSeconds,
		"defaultFocusBehavior", cfg.DefaultStreamFocusBehavior)
	return e, nil
}

// Filters exposes the engine's filter registry so callers can create
// filter instances to pass to Package.ApplyFilters or PlayOneShot.
func (e *Engine) Filters() *filter.Registry { return e.filters }

// Manager exposes the engine's stream registry/worker.
func (e *Engine) Manager() *manager.Manager { return e.manager }

// Logger exposes the engine's structured logger for host applications
// that want to log alongside MonoSound on the same sink.
func (e *Engine) Logger() *zap.SugaredLogger { return e.logger }

// Config returns the configuration the engine was constructed with.
func (e *Engine) Config() config.Config { return e.cfg }

// Close shuts the engine down: stops the stream manager (disposing
// every registered stream per §4.7's deinit path), flushes and closes
// the diagnostics sink, and flushes the logger.
func (e *Engine) Close() error {
	e.manager.Shutdown()
	e.diag.Close()
	e.loggerFlush()
	return nil
}
