// Package telemetry implements MonoSound's two logging textures,
// grounded on the teacher's pairing of ad-hoc log.Printf calls with a
// batching structured logger (logger.BetterStackLogger in
// cloud-livekit-bridge/logger/betterstack.go): a synchronous
// zap.SugaredLogger for the control path — the same call sites the
// teacher hits with log.Printf, now with structured fields instead of
// format strings — and a batching async Sink repurposed from "ship
// logs to Better Stack" to "ship filter-engine diagnostics."
package telemetry

import "go.uber.org/zap"

// NewLogger builds a zap SugaredLogger for the control path: buffer
// depth warnings, decoder failures, and focus-policy transitions.
// The returned function flushes the logger's internal buffers and
// should be deferred by the caller.
func NewLogger(debug bool) (*zap.SugaredLogger, func(), error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, func() {}, err
	}
	return logger.Sugar(), func() { _ = logger.Sync() }, nil
}
