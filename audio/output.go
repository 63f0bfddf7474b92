package audio

import (
	"log"
	"sync"

	"github.com/RobWalt/bevy-kira-audio/backend"
	"github.com/RobWalt/bevy-kira-audio/source"
)

type commandResult int

const (
	commandOk commandResult = iota
	// commandRetry requeues the command to the front of its channel queue so
	// it is attempted again next tick, in its original relative position.
	commandRetry
)

// Stats counts dispatch outcomes since startup.
type Stats struct {
	Played  uint64
	Dropped uint64
	Retried uint64
}

// AudioOutput owns the connection to the mixing backend and the table of
// active instances per channel. It is driven by a single dispatch goroutine
// per tick; the channel queues are the only producer-facing surface.
//
// The backend may be absent when initialization failed. In that case every
// dispatch call is a no-op and the plugin keeps accepting commands, so the
// host application degrades to silence instead of crashing.
type AudioOutput struct {
	backend   backend.Backend
	instances *Instances
	active    map[ChannelID][]InstanceHandle
	channels  map[ChannelID]*ChannelSettings

	statsMu sync.Mutex
	stats   Stats
}

func newAudioOutput(instances *Instances) *AudioOutput {
	return &AudioOutput{
		instances: instances,
		active:    make(map[ChannelID][]InstanceHandle),
		channels:  make(map[ChannelID]*ChannelSettings),
	}
}

func (o *AudioOutput) setBackend(b backend.Backend) {
	o.backend = b
}

// available reports whether a backend is connected.
func (o *AudioOutput) available() bool {
	return o.backend != nil
}

// Stats returns dispatch counters.
func (o *AudioOutput) Stats() Stats {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	return o.stats
}

func (o *AudioOutput) countPlayed()  { o.statsMu.Lock(); o.stats.Played++; o.statsMu.Unlock() }
func (o *AudioOutput) countDropped() { o.statsMu.Lock(); o.stats.Dropped++; o.statsMu.Unlock() }
func (o *AudioOutput) countRetried(n uint64) {
	o.statsMu.Lock()
	o.stats.Retried += n
	o.statsMu.Unlock()
}

// settingsFor returns the channel's persistent settings, creating them lazily
// with defaults.
func (o *AudioOutput) settingsFor(id ChannelID) *ChannelSettings {
	if settings, ok := o.channels[id]; ok {
		return settings
	}
	settings := defaultChannelSettings()
	o.channels[id] = &settings
	return &settings
}

// channelSettings returns a copy of the channel's persistent settings.
func (o *AudioOutput) channelSettings(id ChannelID) ChannelSettings {
	if settings, ok := o.channels[id]; ok {
		return *settings
	}
	return defaultChannelSettings()
}

// playChannel drains the channel's queue and executes the batch in order.
// Commands that fail with a capacity rejection (or plays whose asset is not
// loaded yet) are collected and requeued to the front, preserving their
// relative order. A stop command discards the retries collected so far in
// this batch: a stop is a barrier against pending play-intents.
func (o *AudioOutput) playChannel(ch *AudioChannel, sources *source.Storage) {
	if o.backend == nil {
		return
	}
	batch := ch.commands.drain()
	if len(batch) == 0 {
		return
	}
	var retries []*AudioCommand
	for _, cmd := range batch {
		result := o.runCommand(ch.id, cmd, sources)
		if cmd.kind == commandStop {
			retries = retries[:0]
		}
		if result == commandRetry {
			retries = append(retries, cmd)
		}
	}
	if len(retries) > 0 {
		o.countRetried(uint64(len(retries)))
		ch.commands.requeue(retries)
	}
}

func (o *AudioOutput) runCommand(id ChannelID, cmd *AudioCommand, sources *source.Storage) commandResult {
	switch cmd.kind {
	case commandPlay:
		src := sources.Get(cmd.play.Source)
		if src == nil {
			// Not loaded yet; try again next tick.
			return commandRetry
		}
		return o.play(id, cmd.play, src)
	case commandStop:
		return o.stop(id, cmd.tween)
	case commandPause:
		return o.pause(id, cmd.tween)
	case commandResume:
		return o.resume(id, cmd.tween)
	case commandSetVolume:
		return o.setVolume(id, cmd.value, cmd.tween)
	case commandSetPanning:
		return o.setPanning(id, cmd.value, cmd.tween)
	case commandSetPlaybackRate:
		return o.setPlaybackRate(id, cmd.value, cmd.tween)
	default:
		return commandOk
	}
}

// play resolves the sound, folds the channel settings and per-play overrides
// into it, and submits it to the backend.
func (o *AudioOutput) play(id ChannelID, play *PlaySoundSettings, src *source.AudioSource) commandResult {
	sound := src.Sound.Clone()
	channelState := o.channelSettings(id)
	channelState.apply(&sound)
	play.Settings.apply(&sound)

	// Sounds played into a paused channel (or played with Paused set) are
	// created at playback rate zero, paused, and then restored. Otherwise the
	// audio thread plays a few audible milliseconds before the pause command
	// goes through.
	startPaused := channelState.Paused || play.Settings.Paused
	intendedRate := sound.Settings.PlaybackRate
	if startPaused {
		sound.Settings.PlaybackRate = 0
	}

	handle, err := o.backend.Play(sound)
	if err != nil {
		if backend.IsRetryable(err) {
			return commandRetry
		}
		log.Printf("audio: failed to play sound in channel %s: %v", id, err)
		o.countDropped()
		return commandOk
	}

	if startPaused {
		if err := handle.Pause(backend.DefaultTween()); err != nil {
			log.Printf("audio: failed to pause new instance: %v", err)
		}
		if err := handle.SetPlaybackRate(intendedRate, backend.DefaultTween()); err != nil {
			log.Printf("audio: failed to restore playback rate: %v", err)
		}
	}

	instance := &AudioInstance{
		channel: id,
		source:  play.Source,
		handle:  handle,
		state:   stateFromHandle(handle),
	}
	o.instances.add(play.Instance, instance)
	o.active[id] = append(o.active[id], play.Instance)
	o.countPlayed()
	return commandOk
}

// forEachActive runs op over the channel's live backend handles.
func (o *AudioOutput) forEachActive(id ChannelID, op func(backend.Handle) error) commandResult {
	for _, h := range o.active[id] {
		instance := o.instances.Get(h)
		if instance == nil {
			continue
		}
		bh := instance.backendHandle()
		if bh == nil {
			continue
		}
		if err := op(bh); err != nil {
			if backend.IsRetryable(err) {
				// Retry the whole command next tick so command-level ordering
				// is preserved. Partial application is safe: every operation
				// here is idempotent at the backend.
				return commandRetry
			}
			log.Printf("audio: backend command failed in channel %s: %v", id, err)
		}
	}
	return commandOk
}

func (o *AudioOutput) stop(id ChannelID, tween *backend.Tween) commandResult {
	return o.forEachActive(id, func(h backend.Handle) error {
		return h.Stop(mapTween(tween))
	})
}

func (o *AudioOutput) pause(id ChannelID, tween *backend.Tween) commandResult {
	result := o.forEachActive(id, func(h backend.Handle) error {
		// Only playing instances can meaningfully pause.
		if h.State() != backend.Playing {
			return nil
		}
		return h.Pause(mapTween(tween))
	})
	if result == commandRetry {
		return commandRetry
	}
	o.settingsFor(id).Paused = true
	return commandOk
}

func (o *AudioOutput) resume(id ChannelID, tween *backend.Tween) commandResult {
	result := o.forEachActive(id, func(h backend.Handle) error {
		// Resuming only makes sense for instances that are paused or on
		// their way to being paused or stopped.
		switch h.State() {
		case backend.Paused, backend.Pausing, backend.Stopping:
			return h.Resume(mapTween(tween))
		default:
			return nil
		}
	})
	if result == commandRetry {
		return commandRetry
	}
	o.settingsFor(id).Paused = false
	return commandOk
}

func (o *AudioOutput) setVolume(id ChannelID, volume float64, tween *backend.Tween) commandResult {
	result := o.forEachActive(id, func(h backend.Handle) error {
		return h.SetVolume(volume, mapTween(tween))
	})
	if result == commandRetry {
		return commandRetry
	}
	o.settingsFor(id).Volume = volume
	return commandOk
}

func (o *AudioOutput) setPanning(id ChannelID, panning float64, tween *backend.Tween) commandResult {
	result := o.forEachActive(id, func(h backend.Handle) error {
		return h.SetPanning(panning, mapTween(tween))
	})
	if result == commandRetry {
		return commandRetry
	}
	o.settingsFor(id).Panning = panning
	return commandOk
}

func (o *AudioOutput) setPlaybackRate(id ChannelID, rate float64, tween *backend.Tween) commandResult {
	result := o.forEachActive(id, func(h backend.Handle) error {
		return h.SetPlaybackRate(rate, mapTween(tween))
	})
	if result == commandRetry {
		return commandRetry
	}
	o.settingsFor(id).PlaybackRate = rate
	return commandOk
}

// updateInstanceStates republishes the backend-reported state of every
// resolved instance.
func (o *AudioOutput) updateInstanceStates() {
	o.instances.pollAll()
}

// cleanupStopped sweeps each channel's active list and drops instances whose
// backend state is terminal. This is the only removal path.
func (o *AudioOutput) cleanupStopped() {
	for id, handles := range o.active {
		kept := handles[:0]
		for _, h := range handles {
			instance := o.instances.Get(h)
			if instance == nil {
				continue
			}
			bh := instance.backendHandle()
			if bh != nil && bh.State() == backend.Stopped {
				o.instances.remove(h)
				continue
			}
			kept = append(kept, h)
		}
		if len(kept) == 0 {
			delete(o.active, id)
			continue
		}
		o.active[id] = kept
	}
}

// activeInstances returns the channel's active instance handles in play order.
func (o *AudioOutput) activeInstances(id ChannelID) []InstanceHandle {
	out := make([]InstanceHandle, len(o.active[id]))
	copy(out, o.active[id])
	return out
}

func mapTween(tween *backend.Tween) backend.Tween {
	if tween == nil {
		return backend.DefaultTween()
	}
	return *tween
}
