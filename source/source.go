// Package source holds decoded sound assets and the loaders that produce
// them. Assets resolve asynchronously: a Handle is valid immediately, but the
// decoded data may only become available on a later tick.
package source

import (
	"errors"
	"sync/atomic"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

// Sentinel errors
var (
	ErrUnknownFormat       = errors.New("no decoder registered for file extension")
	ErrUnsupportedChannels = errors.New("only mono and stereo sounds are supported")
	ErrEmptySound          = errors.New("decoded sound contains no samples")
)

// Handle identifies a sound asset. Handles stay valid across hot reloads.
type Handle uint64

var nextHandle atomic.Uint64

// NewHandle allocates a fresh unique asset handle.
func NewHandle() Handle {
	return Handle(nextHandle.Add(1))
}

// AudioSource is a fully decoded sound with its intrinsic settings baked in at
// decode time.
type AudioSource struct {
	Sound backend.SoundData
}

// FromData wraps raw sound data in a source with default settings.
func FromData(samples [][2]float64, sampleRate int) *AudioSource {
	return &AudioSource{
		Sound: backend.SoundData{
			Samples:    samples,
			SampleRate: sampleRate,
			Settings:   backend.DefaultSoundSettings(),
		},
	}
}

// toStereo converts interleaved samples with the given channel count into
// stereo frames. Mono is duplicated to both speakers.
func toStereo(samples []float64, channels int) ([][2]float64, error) {
	switch channels {
	case 1:
		out := make([][2]float64, len(samples))
		for i, s := range samples {
			out[i] = [2]float64{s, s}
		}
		return out, nil
	case 2:
		out := make([][2]float64, len(samples)/2)
		for i := range out {
			out[i] = [2]float64{samples[2*i], samples[2*i+1]}
		}
		return out, nil
	default:
		return nil, ErrUnsupportedChannels
	}
}
