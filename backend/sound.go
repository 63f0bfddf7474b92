package backend

import "math"

// Region is a half-open span of a sound in seconds. End <= 0 means "until the
// end of the sound".
type Region struct {
	Start float64
	End   float64
}

// SoundSettings are the per-play parameters of one sound submission.
type SoundSettings struct {
	// Volume is a multiplicative amplitude factor.
	Volume float64
	// Panning pans between hard left (0.0) and hard right (1.0), 0.5 is center.
	Panning float64
	// PlaybackRate is a rate multiplier. Negative values are invalid; use
	// Reverse for backwards playback.
	PlaybackRate float64
	Reverse      bool
	// PausedAtStart creates the sound in a paused state.
	PausedAtStart bool

	LoopRegion     *Region
	PlaybackRegion *Region
	FadeIn         *Tween
}

// DefaultSoundSettings returns neutral settings.
func DefaultSoundSettings() SoundSettings {
	return SoundSettings{
		Volume:       1.0,
		Panning:      0.5,
		PlaybackRate: 1.0,
	}
}

// SoundData is a fully decoded sound: interleaved stereo frames at a fixed
// sample rate, plus the settings it should be played with.
type SoundData struct {
	Samples    [][2]float64
	SampleRate int
	Settings   SoundSettings
}

// Clone copies the settings while sharing the sample memory. Regions and the
// fade-in tween are copied so the clone can be mutated independently.
func (d SoundData) Clone() SoundData {
	out := d
	if d.Settings.LoopRegion != nil {
		region := *d.Settings.LoopRegion
		out.Settings.LoopRegion = &region
	}
	if d.Settings.PlaybackRegion != nil {
		region := *d.Settings.PlaybackRegion
		out.Settings.PlaybackRegion = &region
	}
	if d.Settings.FadeIn != nil {
		tween := *d.Settings.FadeIn
		out.Settings.FadeIn = &tween
	}
	return out
}

// Duration returns the length of the sound in seconds.
func (d SoundData) Duration() float64 {
	if d.SampleRate <= 0 {
		return 0
	}
	return float64(len(d.Samples)) / float64(d.SampleRate)
}

// Decibels converts a dB value to an amplitude factor.
func Decibels(db float64) float64 {
	return math.Pow(10, db/20)
}
