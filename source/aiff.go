package source

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
)

// DecodeAiff decodes an AIFF file into a stereo source.
func DecodeAiff(r io.ReadSeeker) (*AudioSource, error) {
	dec := aiff.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding aiff: %w", err)
	}
	return fromIntBuffer(buf)
}
