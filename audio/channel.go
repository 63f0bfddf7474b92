// Package audio queues per-channel playback commands and dispatches them
// against a mixing backend once per tick, retrying commands the backend
// transiently rejects.
package audio

import (
	"reflect"
	"sync"

	"github.com/RobWalt/bevy-kira-audio/backend"
	"github.com/RobWalt/bevy-kira-audio/source"
)

// MainTrack is the tag of the default audio channel.
type MainTrack struct{}

// ChannelID identifies a logical audio channel: either a static type tag or a
// dynamic string key. Two IDs with different identities never share queues or
// settings. The zero value is not a valid ID.
type ChannelID struct {
	typed reflect.Type
	key   string
}

// TypedID returns the channel identity for a static tag type.
func TypedID[T any]() ChannelID {
	return ChannelID{typed: reflect.TypeOf((*T)(nil)).Elem()}
}

// DynamicID returns the channel identity for a runtime string key.
func DynamicID(key string) ChannelID {
	return ChannelID{key: key}
}

func (id ChannelID) String() string {
	if id.typed != nil {
		return id.typed.String()
	}
	return id.key
}

// AudioChannel is an independently controllable audio bus. All methods only
// enqueue commands; nothing reaches the backend until the next dispatch tick.
// Safe for concurrent use.
type AudioChannel struct {
	id        ChannelID
	commands  commandQueue
	instances *Instances
}

func newChannel(id ChannelID, instances *Instances) *AudioChannel {
	return &AudioChannel{id: id, instances: instances}
}

// ID returns the channel's identity.
func (c *AudioChannel) ID() ChannelID {
	return c.id
}

// Play creates a play command for the given sound. Configure it with the
// chainable setters, then call Commit to enqueue it.
func (c *AudioChannel) Play(src source.Handle) *PlayCommand {
	return newPlayCommand(src, &c.commands)
}

// Stop stops all sounds in the channel and discards queued plays that were
// enqueued before it in the same undrained batch.
func (c *AudioChannel) Stop(tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandStop, tween: optTween(tween)})
}

// Pause pauses the channel. Sounds played while paused start paused too.
func (c *AudioChannel) Pause(tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandPause, tween: optTween(tween)})
}

// Resume resumes the channel.
func (c *AudioChannel) Resume(tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandResume, tween: optTween(tween)})
}

// SetVolume sets the channel volume. The value is an amplitude factor that is
// multiplied into every sound played in this channel.
func (c *AudioChannel) SetVolume(volume float64, tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandSetVolume, value: volume, tween: optTween(tween)})
}

// SetPanning pans the channel between hard left (0.0) and hard right (1.0).
func (c *AudioChannel) SetPanning(panning float64, tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandSetPanning, value: panning, tween: optTween(tween)})
}

// SetPlaybackRate sets the channel playback rate multiplier.
func (c *AudioChannel) SetPlaybackRate(rate float64, tween ...backend.Tween) {
	c.commands.push(&AudioCommand{kind: commandSetPlaybackRate, value: rate, tween: optTween(tween)})
}

// State returns the playback state of an instance played in this channel.
// Instances that are still queued report StateQueued; unknown handles report
// StateStopped.
func (c *AudioChannel) State(h InstanceHandle) PlaybackState {
	if instance := c.instances.Get(h); instance != nil {
		return instance.State()
	}
	if c.commands.containsPlay(h) {
		return PlaybackState{Kind: StateQueued}
	}
	return PlaybackState{Kind: StateStopped}
}

// IsPlayingSound reports whether any non-terminal instance of the given sound
// is active in this channel.
func (c *AudioChannel) IsPlayingSound(src source.Handle) bool {
	return c.instances.isPlayingSound(c.id, src)
}

// optTween converts a variadic optional tween into the queued representation.
func optTween(tween []backend.Tween) *backend.Tween {
	if len(tween) == 0 {
		return nil
	}
	t := tween[0]
	return &t
}

// DynamicAudioChannels is a registry of channels keyed by runtime strings,
// for channel counts that are not known at compile time.
type DynamicAudioChannels struct {
	mu        sync.RWMutex
	channels  map[string]*AudioChannel
	instances *Instances
}

func newDynamicChannels(instances *Instances) *DynamicAudioChannels {
	return &DynamicAudioChannels{
		channels:  make(map[string]*AudioChannel),
		instances: instances,
	}
}

// Channel returns the channel for the given key, creating it on first use.
func (d *DynamicAudioChannels) Channel(key string) *AudioChannel {
	d.mu.RLock()
	ch, ok := d.channels[key]
	d.mu.RUnlock()
	if ok {
		return ch
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if ch, ok := d.channels[key]; ok {
		return ch
	}
	ch = newChannel(DynamicID(key), d.instances)
	d.channels[key] = ch
	return ch
}

// Exists reports whether a channel was created for the key.
func (d *DynamicAudioChannels) Exists(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.channels[key]
	return ok
}

// Remove drops a channel and any commands still queued on it.
func (d *DynamicAudioChannels) Remove(key string) {
	d.mu.Lock()
	delete(d.channels, key)
	d.mu.Unlock()
}

// all returns a snapshot of the registered channels.
func (d *DynamicAudioChannels) all() []*AudioChannel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*AudioChannel, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch)
	}
	return out
}
