// Package beepout plays sounds through the system speaker using gopxl/beep.
// It implements the backend contract: handle operations are submitted to a
// bounded command queue that is drained on the audio goroutine at buffer
// boundaries, and a full queue rejects commands instead of blocking.
package beepout

import (
	"fmt"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

// Config tunes the speaker output.
type Config struct {
	SampleRate int
	// BufferSize of the speaker, in frames. Larger values add latency but
	// tolerate scheduling jitter.
	BufferSize int
	// CommandCapacity bounds the command queue shared by all handles.
	CommandCapacity int
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate:      48000,
		BufferSize:      2400,
		CommandCapacity: 128,
	}
}

// Engine is a backend.Backend over a beep speaker.
type Engine struct {
	config   *Config
	mixer    *beep.Mixer
	commands chan func()

	started atomic.Bool
	closed  atomic.Bool
}

// New creates an engine. The speaker is not touched until Start.
func New(cfg ...*Config) *Engine {
	config := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		config = cfg[0]
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 48000
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 2400
	}
	if config.CommandCapacity <= 0 {
		config.CommandCapacity = 128
	}
	return &Engine{
		config:   config,
		mixer:    &beep.Mixer{},
		commands: make(chan func(), config.CommandCapacity),
	}
}

// Start opens the speaker and attaches the mixer.
func (e *Engine) Start() error {
	if e.closed.Load() {
		return backend.ErrBackendClosed
	}
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}
	sr := beep.SampleRate(e.config.SampleRate)
	if err := speaker.Init(sr, e.config.BufferSize); err != nil {
		e.started.Store(false)
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(e.root())
	return nil
}

// root drains queued commands on the audio goroutine, then streams the mix.
func (e *Engine) root() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		e.drainCommands()
		return e.mixer.Stream(samples)
	})
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			cmd()
		default:
			return
		}
	}
}

// submit queues a command for the audio goroutine. Non-blocking.
func (e *Engine) submit(cmd func()) error {
	if e.closed.Load() {
		return backend.ErrBackendClosed
	}
	select {
	case e.commands <- cmd:
		return nil
	default:
		return backend.ErrCommandQueueFull
	}
}

// Play implements backend.Backend.
func (e *Engine) Play(data backend.SoundData) (backend.Handle, error) {
	if e.closed.Load() {
		return nil, backend.ErrBackendClosed
	}
	s := newSound(data, e.config.SampleRate)
	if err := e.submit(func() { e.mixer.Add(s) }); err != nil {
		return nil, err
	}
	return &handle{engine: e, sound: s}, nil
}

// Close stops accepting commands and silences the speaker. The speaker device
// itself stays open; beep keeps it for the process lifetime.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if e.started.Load() {
		speaker.Clear()
	}
}
