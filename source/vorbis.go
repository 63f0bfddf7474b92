package source

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// DecodeVorbis decodes an Ogg/Vorbis stream into a stereo source.
func DecodeVorbis(r io.ReadSeeker) (*AudioSource, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding ogg: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySound
	}
	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}
	frames, err := toStereo(samples, format.Channels)
	if err != nil {
		return nil, err
	}
	return FromData(frames, format.SampleRate), nil
}
