package audio

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/RobWalt/bevy-kira-audio/backend"
	"github.com/RobWalt/bevy-kira-audio/source"
)

// ErrInstanceQueued is returned for direct operations on an instance whose
// play command has not been dispatched yet.
var ErrInstanceQueued = errors.New("audio instance is still queued")

// InstanceHandle identifies one playing or queued sound. It is allocated
// before the backend call completes, so callers can reference the sound
// immediately.
type InstanceHandle uint64

var nextInstance atomic.Uint64

func newInstanceHandle() InstanceHandle {
	return InstanceHandle(nextInstance.Add(1))
}

// StateKind enumerates instance playback states.
type StateKind int

const (
	// StateQueued means the play command has not reached the backend yet.
	StateQueued StateKind = iota
	StatePlaying
	// StatePausing means the instance is fading out and will be paused.
	StatePausing
	StatePaused
	// StateStopping means the instance is fading out and will be stopped.
	StateStopping
	// StateStopped is terminal. The instance is removed by the next sweep.
	StateStopped
)

func (k StateKind) String() string {
	switch k {
	case StateQueued:
		return "queued"
	case StatePlaying:
		return "playing"
	case StatePausing:
		return "pausing"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PlaybackState is the published state of an instance. Position is the
// playback position in seconds; it is meaningless for Queued and Stopped.
type PlaybackState struct {
	Kind     StateKind
	Position float64
}

// stateFromHandle mirrors the backend-reported state of a live handle.
func stateFromHandle(h backend.Handle) PlaybackState {
	position := h.Position()
	switch h.State() {
	case backend.Playing:
		return PlaybackState{Kind: StatePlaying, Position: position}
	case backend.Pausing:
		return PlaybackState{Kind: StatePausing, Position: position}
	case backend.Paused:
		return PlaybackState{Kind: StatePaused, Position: position}
	case backend.Stopping:
		return PlaybackState{Kind: StateStopping, Position: position}
	default:
		return PlaybackState{Kind: StateStopped}
	}
}

// AudioInstance owns exactly one live backend handle once its play command
// was dispatched.
type AudioInstance struct {
	mu      sync.Mutex
	channel ChannelID
	source  source.Handle
	handle  backend.Handle
	state   PlaybackState
}

// State returns the instance state as of the last tick's poll.
func (i *AudioInstance) State() PlaybackState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Source returns the sound this instance was played from.
func (i *AudioInstance) Source() source.Handle {
	return i.source
}

func (i *AudioInstance) poll() {
	i.mu.Lock()
	if i.handle != nil {
		i.state = stateFromHandle(i.handle)
	}
	i.mu.Unlock()
}

func (i *AudioInstance) backendHandle() backend.Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handle
}

// control runs op against the live backend handle. Commands issued here
// bypass the channel queue and are not retried.
func (i *AudioInstance) control(op func(backend.Handle) error) error {
	h := i.backendHandle()
	if h == nil {
		return ErrInstanceQueued
	}
	return op(h)
}

// Stop stops this single instance.
func (i *AudioInstance) Stop(tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.Stop(controlTween(tween)) })
}

// Pause pauses this single instance.
func (i *AudioInstance) Pause(tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.Pause(controlTween(tween)) })
}

// Resume resumes this single instance.
func (i *AudioInstance) Resume(tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.Resume(controlTween(tween)) })
}

// SetVolume sets the volume of this single instance.
func (i *AudioInstance) SetVolume(volume float64, tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.SetVolume(volume, controlTween(tween)) })
}

// SetPanning pans this single instance.
func (i *AudioInstance) SetPanning(panning float64, tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.SetPanning(panning, controlTween(tween)) })
}

// SetPlaybackRate sets the playback rate of this single instance.
func (i *AudioInstance) SetPlaybackRate(rate float64, tween ...backend.Tween) error {
	return i.control(func(h backend.Handle) error { return h.SetPlaybackRate(rate, controlTween(tween)) })
}

func controlTween(tween []backend.Tween) backend.Tween {
	if len(tween) == 0 {
		return backend.DefaultTween()
	}
	return tween[0]
}

// Instances tracks every dispatched instance. Entries are created when a play
// command succeeds against the backend and removed by the per-tick sweep once
// their backend state is terminal.
type Instances struct {
	mu    sync.RWMutex
	items map[InstanceHandle]*AudioInstance
}

func NewInstances() *Instances {
	return &Instances{items: make(map[InstanceHandle]*AudioInstance)}
}

// Get returns the instance for a handle, or nil if it was never dispatched or
// was already swept.
func (r *Instances) Get(h InstanceHandle) *AudioInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[h]
}

// State returns the published state for a handle. Unknown handles report
// StateStopped.
func (r *Instances) State(h InstanceHandle) PlaybackState {
	if instance := r.Get(h); instance != nil {
		return instance.State()
	}
	return PlaybackState{Kind: StateStopped}
}

// Len returns the number of tracked instances.
func (r *Instances) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Instances) add(h InstanceHandle, instance *AudioInstance) {
	r.mu.Lock()
	r.items[h] = instance
	r.mu.Unlock()
}

func (r *Instances) remove(h InstanceHandle) {
	r.mu.Lock()
	delete(r.items, h)
	r.mu.Unlock()
}

func (r *Instances) pollAll() {
	r.mu.RLock()
	instances := make([]*AudioInstance, 0, len(r.items))
	for _, instance := range r.items {
		instances = append(instances, instance)
	}
	r.mu.RUnlock()

	for _, instance := range instances {
		instance.poll()
	}
}

func (r *Instances) isPlayingSound(channel ChannelID, src source.Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, instance := range r.items {
		if instance.channel != channel || instance.source != src {
			continue
		}
		if kind := instance.State().Kind; kind != StateStopped {
			return true
		}
	}
	return false
}
