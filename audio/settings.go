package audio

import "github.com/RobWalt/bevy-kira-audio/backend"

// ChannelSettings is the persistent per-channel state. It is mutated only by
// executing commands targeted at the channel and persists across ticks, so
// future plays inherit it.
type ChannelSettings struct {
	Paused       bool
	Volume       float64
	Panning      float64
	PlaybackRate float64
}

func defaultChannelSettings() ChannelSettings {
	return ChannelSettings{
		Volume:       1.0,
		Panning:      0.5,
		PlaybackRate: 1.0,
	}
}

// apply folds the channel state into a sound about to be played. Volume and
// playback rate compose multiplicatively with the source defaults; panning is
// taken from the channel.
func (s ChannelSettings) apply(sound *backend.SoundData) {
	sound.Settings.Volume *= s.Volume
	sound.Settings.PlaybackRate *= s.PlaybackRate
	sound.Settings.Panning = s.Panning
}
