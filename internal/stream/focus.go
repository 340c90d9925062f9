package stream

import "github.com/absoluteAquarian/monosound/internal/sink"

// SetFocusBehavior overrides the engine-wide default focus behavior
// for this stream.
func (p *Package) SetFocusBehavior(b FocusBehavior) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := b
	p.focusBehavior = &v
}

func (p *Package) effectiveFocusBehavior(fallback FocusBehavior) FocusBehavior {
	if p.focusBehavior != nil {
		return *p.focusBehavior
	}
	return fallback
}

// ApplyFocusLoss pauses the stream if its effective focus behavior is
// PauseOnLostFocus and it is currently playing, marking the pause as
// focus-driven so ApplyFocusGain (and only that) will resume it. A
// user-issued Pause never sets this flag (§4.6: "User pause/resume
// does not trip that flag").
func (p *Package) ApplyFocusLoss(defaultBehavior FocusBehavior) {
	p.mu.Lock()
	behavior := p.effectiveFocusBehavior(defaultBehavior)
	if behavior != PauseOnLostFocus || p.snk.State() != sink.Playing {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if err := p.snk.Pause(); err == nil {
		p.mu.Lock()
		p.focusPause = true
		p.mu.Unlock()
	}
}

// ApplyFocusGain resumes a stream previously paused by ApplyFocusLoss.
// It is a no-op for streams paused by the user.
func (p *Package) ApplyFocusGain() {
	p.mu.Lock()
	if !p.focusPause {
		p.mu.Unlock()
		return
	}
	p.focusPause = false
	p.mu.Unlock()

	_ = p.snk.Resume()
}
