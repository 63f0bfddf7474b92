package source

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWav decodes a RIFF/WAVE file into a stereo source.
func DecodeWav(r io.ReadSeeker) (*AudioSource, error) {
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	return fromIntBuffer(buf)
}

// fromIntBuffer converts a go-audio PCM buffer into a stereo float source.
func fromIntBuffer(buf *goaudio.IntBuffer) (*AudioSource, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, ErrEmptySound
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	frames, err := toStereo(samples, buf.Format.NumChannels)
	if err != nil {
		return nil, err
	}
	return FromData(frames, buf.Format.SampleRate), nil
}
