package audio

import (
	"time"

	"github.com/RobWalt/bevy-kira-audio/backend"
	"github.com/RobWalt/bevy-kira-audio/source"
)

type commandKind int

const (
	commandPlay commandKind = iota
	commandSetVolume
	commandSetPanning
	commandSetPlaybackRate
	commandStop
	commandPause
	commandResume
)

// AudioCommand is one queued channel operation. Immutable once constructed;
// owned by the queue until dispatched.
type AudioCommand struct {
	kind  commandKind
	value float64
	tween *backend.Tween
	play  *PlaySoundSettings
}

// PlaySoundSettings is the payload of a queued play command.
type PlaySoundSettings struct {
	Instance InstanceHandle
	Source   source.Handle
	Settings PartialSoundSettings
}

// PartialSoundSettings is a sparse override set for one play. Unset fields
// inherit the channel and source defaults.
type PartialSoundSettings struct {
	LoopStart     *float64
	LoopEnd       *float64
	Volume        *float64
	PlaybackRate  *float64
	StartPosition *float64
	EndPosition   *float64
	Panning       *float64
	Reverse       *bool
	Paused        bool
	FadeIn        *backend.Tween
}

// apply overlays the overrides onto sound settings that already carry the
// channel and source defaults. Volume composes multiplicatively with the
// factor applied so far; the other fields replace it.
func (s *PartialSoundSettings) apply(sound *backend.SoundData) {
	if s.LoopStart != nil {
		if sound.Settings.LoopRegion == nil {
			sound.Settings.LoopRegion = &backend.Region{}
		}
		sound.Settings.LoopRegion.Start = *s.LoopStart
	}
	if s.LoopEnd != nil {
		if sound.Settings.LoopRegion == nil {
			sound.Settings.LoopRegion = &backend.Region{}
		}
		sound.Settings.LoopRegion.End = *s.LoopEnd
	}
	if s.Volume != nil {
		sound.Settings.Volume = *s.Volume * sound.Settings.Volume
	}
	if s.PlaybackRate != nil {
		sound.Settings.PlaybackRate = *s.PlaybackRate
	}
	if s.StartPosition != nil {
		if sound.Settings.PlaybackRegion == nil {
			sound.Settings.PlaybackRegion = &backend.Region{}
		}
		sound.Settings.PlaybackRegion.Start = *s.StartPosition
	}
	if s.EndPosition != nil {
		if sound.Settings.PlaybackRegion == nil {
			sound.Settings.PlaybackRegion = &backend.Region{}
		}
		sound.Settings.PlaybackRegion.End = *s.EndPosition
	}
	if s.Panning != nil {
		sound.Settings.Panning = *s.Panning
	}
	if s.Reverse != nil {
		sound.Settings.Reverse = *s.Reverse
	}
	if s.FadeIn != nil {
		tween := *s.FadeIn
		sound.Settings.FadeIn = &tween
	}
}

// PlayCommand accumulates the settings of one play request. The instance
// handle is allocated up front, so callers can reference the sound before it
// is dispatched. Commit enqueues the command exactly once; further Commit
// calls return the same handle without enqueueing again.
//
// Not safe for concurrent use; build and commit from one goroutine.
type PlayCommand struct {
	handle    InstanceHandle
	source    source.Handle
	settings  PartialSoundSettings
	queue     *commandQueue
	committed bool
}

func newPlayCommand(src source.Handle, queue *commandQueue) *PlayCommand {
	return &PlayCommand{
		handle: newInstanceHandle(),
		source: src,
		queue:  queue,
	}
}

// Looped loops the sound from its start.
func (c *PlayCommand) Looped() *PlayCommand {
	start := 0.0
	c.settings.LoopStart = &start
	return c
}

// LoopFrom loops the sound, starting from the given position in seconds.
func (c *PlayCommand) LoopFrom(position float64) *PlayCommand {
	c.settings.LoopStart = &position
	return c
}

// LoopUntil loops the sound, ending at the given position in seconds.
func (c *PlayCommand) LoopUntil(position float64) *PlayCommand {
	c.settings.LoopEnd = &position
	return c
}

// Paused starts the sound paused.
func (c *PlayCommand) Paused() *PlayCommand {
	c.settings.Paused = true
	return c
}

// WithVolume sets the volume of the sound. Composes multiplicatively with the
// channel volume.
func (c *PlayCommand) WithVolume(volume float64) *PlayCommand {
	c.settings.Volume = &volume
	return c
}

// WithPlaybackRate sets the playback rate of the sound.
func (c *PlayCommand) WithPlaybackRate(rate float64) *PlayCommand {
	c.settings.PlaybackRate = &rate
	return c
}

// StartFrom starts the sound from the given position in seconds.
func (c *PlayCommand) StartFrom(position float64) *PlayCommand {
	c.settings.StartPosition = &position
	return c
}

// EndAt ends the sound at the given position in seconds.
func (c *PlayCommand) EndAt(position float64) *PlayCommand {
	c.settings.EndPosition = &position
	return c
}

// WithPanning sets the panning of the sound. 0.5 is center.
func (c *PlayCommand) WithPanning(panning float64) *PlayCommand {
	c.settings.Panning = &panning
	return c
}

// Reverse toggles reversed playback. Calling it twice cancels.
func (c *PlayCommand) Reverse() *PlayCommand {
	current := c.settings.Reverse != nil && *c.settings.Reverse
	toggled := !current
	c.settings.Reverse = &toggled
	return c
}

// LinearFadeIn fades the sound in linearly over the given duration.
func (c *PlayCommand) LinearFadeIn(duration time.Duration) *PlayCommand {
	tween := backend.LinearTween(duration)
	c.settings.FadeIn = &tween
	return c
}

// FadeIn fades the sound in with the given tween.
func (c *PlayCommand) FadeIn(tween backend.Tween) *PlayCommand {
	t := tween
	c.settings.FadeIn = &t
	return c
}

// Handle returns the pre-allocated instance handle.
func (c *PlayCommand) Handle() InstanceHandle {
	return c.handle
}

// Commit compiles the accumulated settings into a single play command,
// enqueues it on the owning channel, and returns the instance handle.
func (c *PlayCommand) Commit() InstanceHandle {
	if c.committed {
		return c.handle
	}
	c.committed = true
	c.queue.push(&AudioCommand{
		kind: commandPlay,
		play: &PlaySoundSettings{
			Instance: c.handle,
			Source:   c.source,
			Settings: c.settings,
		},
	})
	return c.handle
}
