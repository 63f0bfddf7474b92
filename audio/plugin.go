package audio

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/RobWalt/bevy-kira-audio/beepout"
	"github.com/RobWalt/bevy-kira-audio/service"
	"github.com/RobWalt/bevy-kira-audio/source"
)

// Plugin is the entry point for host applications. It owns the dispatcher,
// the channel registries, and the sound asset storage, and exposes the
// per-tick Update that drains every channel against the backend.
//
// When no audio device is available the plugin keeps running in silent mode:
// commands are accepted and dropped at dispatch, nothing escalates.
type Plugin struct {
	settings  *Settings
	output    *AudioOutput
	instances *Instances
	storage   *source.Storage
	loader    *source.Loader

	main    *AudioChannel
	dynamic *DynamicAudioChannels

	typedMu sync.RWMutex
	typed   map[reflect.Type]*AudioChannel
	// dispatch order: main first, then typed channels in registration order
	order []*AudioChannel

	engine  *beepout.Engine
	started atomic.Bool
}

// New creates a plugin. Pass a Settings value to override the defaults.
func New(cfg ...*Settings) *Plugin {
	settings := DefaultSettings()
	if len(cfg) > 0 && cfg[0] != nil {
		settings = cfg[0]
	}

	instances := NewInstances()
	storage := source.NewStorage()
	p := &Plugin{
		settings:  settings,
		output:    newAudioOutput(instances),
		instances: instances,
		storage:   storage,
		loader:    source.NewLoader(storage),
		dynamic:   newDynamicChannels(instances),
		typed:     make(map[reflect.Type]*AudioChannel),
	}
	p.main = newChannel(TypedID[MainTrack](), instances)
	p.typed[reflect.TypeOf(MainTrack{})] = p.main
	p.order = append(p.order, p.main)
	p.applyPresets()
	return p
}

func (p *Plugin) applyPresets() {
	for key, preset := range p.settings.Channels {
		settings := preset.settings()
		p.output.channels[DynamicID(key)] = &settings
		p.dynamic.Channel(key)
	}
}

// AddChannel registers a typed audio channel on the plugin and returns it.
// Registering the same tag twice returns the existing channel.
func AddChannel[T any](p *Plugin) *AudioChannel {
	tag := reflect.TypeOf((*T)(nil)).Elem()

	p.typedMu.Lock()
	defer p.typedMu.Unlock()
	if ch, ok := p.typed[tag]; ok {
		return ch
	}
	ch := newChannel(TypedID[T](), p.instances)
	p.typed[tag] = ch
	p.order = append(p.order, ch)
	return ch
}

// Audio returns the default channel.
func (p *Plugin) Audio() *AudioChannel {
	return p.main
}

// Channels returns the dynamic channel registry.
func (p *Plugin) Channels() *DynamicAudioChannels {
	return p.dynamic
}

// Sources returns the sound asset storage.
func (p *Plugin) Sources() *source.Storage {
	return p.storage
}

// Loader returns the sound file loader.
func (p *Plugin) Loader() *source.Loader {
	return p.loader
}

// Instances returns the instance registry.
func (p *Plugin) Instances() *Instances {
	return p.instances
}

// Stats returns dispatch counters.
func (p *Plugin) Stats() Stats {
	return p.output.Stats()
}

// IsAvailable reports whether a backend is connected. False means silent
// mode: commands are accepted but dropped at dispatch.
func (p *Plugin) IsAvailable() bool {
	return p.output.available()
}

// ChannelSettings returns a copy of the persistent settings of a channel.
func (p *Plugin) ChannelSettings(id ChannelID) ChannelSettings {
	return p.output.channelSettings(id)
}

// Update runs one dispatch tick: drain and execute every channel's queue,
// republish instance states, then sweep terminal instances. Call it once per
// frame from the host's scheduler, from a single goroutine.
func (p *Plugin) Update() {
	p.typedMu.RLock()
	typed := make([]*AudioChannel, len(p.order))
	copy(typed, p.order)
	p.typedMu.RUnlock()

	for _, ch := range typed {
		p.output.playChannel(ch, p.storage)
	}
	for _, ch := range p.dynamic.all() {
		p.output.playChannel(ch, p.storage)
	}
	p.output.updateInstanceStates()
	p.output.cleanupStopped()
}

// Name implements service.Service.
func (p *Plugin) Name() string {
	return "audio"
}

// Dependencies implements service.Service.
func (p *Plugin) Dependencies() []string {
	return nil
}

// Init implements service.Service.
// args[0]: optional *Settings or string path to a YAML settings file.
// A broken settings file is an error; a missing audio device is not.
func (p *Plugin) Init(args ...any) error {
	if len(args) > 0 {
		switch arg := args[0].(type) {
		case *Settings:
			if arg != nil {
				p.settings = arg
			}
		case string:
			settings, err := LoadSettings(arg)
			if err != nil {
				return err
			}
			p.settings = settings
		}
		p.applyPresets()
	}
	return nil
}

// Start implements service.Service. It connects the configured backend, or
// opens the default speaker output. Failure to open an audio device is
// logged once and leaves the plugin in silent mode, not an error.
func (p *Plugin) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return nil
	}
	if p.settings.Backend != nil {
		p.output.setBackend(p.settings.Backend)
		return nil
	}

	engine := beepout.New(&beepout.Config{
		SampleRate:      p.settings.SampleRate,
		BufferSize:      p.settings.BufferSize,
		CommandCapacity: p.settings.CommandCapacity,
	})
	if err := engine.Start(); err != nil {
		log.Printf("audio: no audio device, running silent: %v", err)
		return nil
	}
	p.engine = engine
	p.output.setBackend(engine)
	return nil
}

// Stop implements service.Service. Idempotent.
func (p *Plugin) Stop() error {
	if !p.started.CompareAndSwap(true, false) {
		return nil
	}
	if p.engine != nil {
		p.engine.Close()
		p.engine = nil
	}
	p.output.setBackend(nil)
	return nil
}

// Contribute implements service.ResourceContributor, publishing the plugin
// for the host's resource bridge.
func (p *Plugin) Contribute(publish service.ResourcePublisher) {
	publish(p)
}
