// Package mock provides a scriptable in-memory backend for tests. It records
// every handle operation and can be driven to reject commands with capacity
// errors or arbitrary failures.
package mock

import (
	"sync"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

// Call is one recorded handle operation.
type Call struct {
	Op    string
	Value float64
	Tween backend.Tween
}

// Backend implements backend.Backend for tests.
type Backend struct {
	mu        sync.Mutex
	queueFull bool
	playErrs  []error
	handles   []*Handle
}

func New() *Backend {
	return &Backend{}
}

// SetQueueFull makes every subsequent command (including Play) fail with
// ErrCommandQueueFull until released.
func (b *Backend) SetQueueFull(full bool) {
	b.mu.Lock()
	b.queueFull = full
	b.mu.Unlock()
}

// FailNextPlay queues an error for the next Play call.
func (b *Backend) FailNextPlay(err error) {
	b.mu.Lock()
	b.playErrs = append(b.playErrs, err)
	b.mu.Unlock()
}

func (b *Backend) Play(sound backend.SoundData) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.playErrs) > 0 {
		err := b.playErrs[0]
		b.playErrs = b.playErrs[1:]
		return nil, err
	}
	if b.queueFull {
		return nil, backend.ErrCommandQueueFull
	}
	h := &Handle{owner: b, Sound: sound, state: backend.Playing}
	b.handles = append(b.handles, h)
	return h, nil
}

// Handles returns every handle created so far, in play order.
func (b *Backend) Handles() []*Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Handle, len(b.handles))
	copy(out, b.handles)
	return out
}

// Handle implements backend.Handle and records all operations.
type Handle struct {
	mu       sync.Mutex
	owner    *Backend
	state    backend.PlaybackState
	position float64
	failNext error

	Sound backend.SoundData
	Calls []Call
}

// FailNext makes the next operation on this handle fail with err.
func (h *Handle) FailNext(err error) {
	h.mu.Lock()
	h.failNext = err
	h.mu.Unlock()
}

// SetState overrides the reported playback state.
func (h *Handle) SetState(state backend.PlaybackState) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

// SetPosition overrides the reported playback position.
func (h *Handle) SetPosition(position float64) {
	h.mu.Lock()
	h.position = position
	h.mu.Unlock()
}

func (h *Handle) op(name string, value float64, tween backend.Tween, state backend.PlaybackState, changeState bool) error {
	h.owner.mu.Lock()
	full := h.owner.queueFull
	h.owner.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failNext; err != nil {
		h.failNext = nil
		return err
	}
	if full {
		return backend.ErrCommandQueueFull
	}
	h.Calls = append(h.Calls, Call{Op: name, Value: value, Tween: tween})
	if changeState {
		h.state = state
	}
	return nil
}

func (h *Handle) Stop(tween backend.Tween) error {
	state := backend.Stopped
	if tween.Duration > 0 {
		state = backend.Stopping
	}
	return h.op("stop", 0, tween, state, true)
}

func (h *Handle) Pause(tween backend.Tween) error {
	state := backend.Paused
	if tween.Duration > 0 {
		state = backend.Pausing
	}
	return h.op("pause", 0, tween, state, true)
}

func (h *Handle) Resume(tween backend.Tween) error {
	return h.op("resume", 0, tween, backend.Playing, true)
}

func (h *Handle) SetVolume(volume float64, tween backend.Tween) error {
	return h.op("set_volume", volume, tween, 0, false)
}

func (h *Handle) SetPanning(panning float64, tween backend.Tween) error {
	return h.op("set_panning", panning, tween, 0, false)
}

func (h *Handle) SetPlaybackRate(rate float64, tween backend.Tween) error {
	return h.op("set_playback_rate", rate, tween, 0, false)
}

func (h *Handle) State() backend.PlaybackState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

// CallOps returns just the operation names, in order.
func (h *Handle) CallOps() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := make([]string, len(h.Calls))
	for i, c := range h.Calls {
		ops[i] = c.Op
	}
	return ops
}
