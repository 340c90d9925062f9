// Package manager implements the stream manager (C6, §4.7): a
// concurrent registry of live stream.Package values serviced by one
// long-lived background worker. Grounded on the teacher's session
// registry in cloud-livekit-bridge/service.go (a name-keyed map of
// live sessions, each serviced by a shared background loop that polls
// state and drives per-session work) generalized from "LiveKit room
// sessions" to "decoded audio streams."
package manager

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absoluteAquarian/monosound/internal/sink"
	"github.com/absoluteAquarian/monosound/internal/stream"
)

// Lock state machine values for the §4.7 deinit-safety CAS protocol.
const (
	stateWaiting int32 = iota
	stateProcessing
	stateLocked
)

// pollInterval is the worker's yield interval between ticks (§4.7:
// "Thread.Yield between worker ticks").
const pollInterval = 2 * time.Millisecond

// Manager is the concurrent stream registry and background worker
// (C6). The zero value is not usable; construct with New.
type Manager struct {
	mu      sync.Mutex
	streams map[string]*stream.Package

	lock int32 // atomic lock state, see stateWaiting/Processing/Locked

	focusDefault stream.FocusBehavior
	focused      int32 // atomic bool: 1 = application currently has focus

	stopped int32
	done    chan struct{}

	onPanic func(streamName string, r interface{})
}

// New constructs a Manager and starts its background worker.
// focusDefault is the engine-wide default focus policy (§4.6) applied
// to any stream that hasn't overridden it.
func New(focusDefault stream.FocusBehavior) *Manager {
	m := &Manager{
		streams:      make(map[string]*stream.Package),
		focusDefault: focusDefault,
		focused:      1,
		done:         make(chan struct{}),
	}
	go m.run()
	return m
}

// SetPanicHandler installs a callback invoked when a single stream's
// per-tick work panics, isolating the failure from the worker loop
// (§4.7: "exceptions thrown inside the worker must be caught
// per-stream and swallowed").
func (m *Manager) SetPanicHandler(fn func(streamName string, r interface{})) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPanic = fn
}

// Register reserves a collision-free name derived from basename — on
// collision an increasing integer suffix is appended (§4.7) — builds
// the stream via build(name), and adds it to the registry.
func (m *Manager) Register(basename string, build func(name string) *stream.Package) (*stream.Package, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := m.resolveNameLocked(basename)
	p := build(name)
	m.streams[name] = p
	return p, name
}

func (m *Manager) resolveNameLocked(basename string) string {
	if _, exists := m.streams[basename]; !exists {
		return basename
	}
	for i := 1; ; i++ {
		candidate := basename + strconv.Itoa(i)
		if _, exists := m.streams[candidate]; !exists {
			return candidate
		}
	}
}

// Get looks up a registered stream by name.
func (m *Manager) Get(name string) (*stream.Package, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.streams[name]
	return p, ok
}

// Remove drops a stream from the registry. Callers are responsible
// for disposing the stream themselves first.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.streams, name)
}

// Count reports the number of registered streams.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// SetFocused updates the application-focus flag the worker enforces
// on every tick (§4.6's focus policy).
func (m *Manager) SetFocused(focused bool) {
	var v int32
	if focused {
		v = 1
	}
	atomic.StoreInt32(&m.focused, v)
}

func (m *Manager) snapshotLocked() []*stream.Package {
	out := make([]*stream.Package, 0, len(m.streams))
	for _, p := range m.streams {
		out = append(out, p)
	}
	return out
}

// waitForUnlock spins until the worker claims the Processing state,
// returning false if deinit has claimed the Locked state instead
// (§4.7's lock state machine).
func (m *Manager) waitForUnlock() bool {
	for {
		if atomic.CompareAndSwapInt32(&m.lock, stateWaiting, stateProcessing) {
			return true
		}
		if atomic.LoadInt32(&m.lock) == stateLocked {
			return false
		}
		time.Sleep(pollInterval)
	}
}

func (m *Manager) releaseLock() {
	atomic.StoreInt32(&m.lock, stateWaiting)
}

// run is the single long-lived worker task described in §4.7's
// pseudocode: snapshot the registry, enforce focus policy, strobe
// every playing stream's sink, then yield.
func (m *Manager) run() {
	defer close(m.done)
	for atomic.LoadInt32(&m.stopped) == 0 {
		if !m.waitForUnlock() {
			return
		}

		m.mu.Lock()
		snapshot := m.snapshotLocked()
		m.mu.Unlock()

		focused := atomic.LoadInt32(&m.focused) == 1
		for _, s := range snapshot {
			m.tickStream(s, focused)
		}

		m.releaseLock()
		time.Sleep(pollInterval)
	}
}

// tickStream enforces focus policy and strobes one stream's sink,
// recovering from any panic so one misbehaving stream cannot stop the
// worker (§4.7).
func (m *Manager) tickStream(s *stream.Package, focused bool) {
	defer func() {
		if r := recover(); r != nil {
			m.mu.Lock()
			handler := m.onPanic
			m.mu.Unlock()
			if handler != nil {
				handler(s.Name(), r)
			}
		}
	}()

	if s.Disposed() {
		return
	}

	if focused {
		s.ApplyFocusGain()
	} else {
		s.ApplyFocusLoss(m.focusDefault)
	}

	if s.State() == sink.Playing {
		s.StrobeSink()
	}
}

// Shutdown claims the Locked state (the §4.7 deinit path, so the
// worker never observes a half-freed registry), disposes every
// registered stream, and blocks until the worker has exited.
func (m *Manager) Shutdown() {
	if !atomic.CompareAndSwapInt32(&m.stopped, 0, 1) {
		<-m.done
		return
	}

	for !atomic.CompareAndSwapInt32(&m.lock, stateWaiting, stateLocked) {
		time.Sleep(pollInterval)
	}

	m.mu.Lock()
	for _, p := range m.streams {
		p.Dispose()
	}
	m.streams = make(map[string]*stream.Package)
	m.mu.Unlock()

	<-m.done
}
