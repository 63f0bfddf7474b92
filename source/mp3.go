package source

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// DecodeMp3 decodes an MP3 stream into a stereo source.
// go-mp3 always outputs 16-bit little-endian stereo PCM.
func DecodeMp3(r io.ReadSeeker) (*AudioSource, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	if len(raw) < 4 {
		return nil, ErrEmptySound
	}
	frames := make([][2]float64, len(raw)/4)
	for i := range frames {
		left := int16(binary.LittleEndian.Uint16(raw[4*i:]))
		right := int16(binary.LittleEndian.Uint16(raw[4*i+2:]))
		frames[i] = [2]float64{
			float64(left) / 32768.0,
			float64(right) / 32768.0,
		}
	}
	return FromData(frames, dec.SampleRate()), nil
}
