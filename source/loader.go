package source

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Decoder turns encoded file bytes into a decoded source.
type Decoder func(r io.ReadSeeker) (*AudioSource, error)

// decoders maps lowercase file extensions to their decoder.
var decoders = map[string]Decoder{
	".wav":  DecodeWav,
	".aiff": DecodeAiff,
	".aif":  DecodeAiff,
	".mp3":  DecodeMp3,
	".ogg":  DecodeVorbis,
	".oga":  DecodeVorbis,
}

// RegisterDecoder adds or replaces the decoder for a file extension.
func RegisterDecoder(ext string, dec Decoder) {
	decoders[strings.ToLower(ext)] = dec
}

// Loader decodes sound files into a Storage asynchronously. Load returns a
// handle immediately; the source resolves once decoding finishes. Decode
// failures are logged and leave the handle unresolved.
type Loader struct {
	storage *Storage

	mu     sync.Mutex
	byPath map[string]Handle
}

func NewLoader(storage *Storage) *Loader {
	return &Loader{
		storage: storage,
		byPath:  make(map[string]Handle),
	}
}

// Storage returns the storage this loader resolves into.
func (l *Loader) Storage() *Storage {
	return l.storage
}

// Load starts decoding path in the background and returns its handle. Loading
// the same path again returns the existing handle without re-decoding.
func (l *Loader) Load(path string) Handle {
	l.mu.Lock()
	if h, ok := l.byPath[path]; ok {
		l.mu.Unlock()
		return h
	}
	h := NewHandle()
	l.byPath[path] = h
	l.mu.Unlock()

	go l.decode(path, h)
	return h
}

// Reload re-decodes a previously loaded path into its existing handle.
// Returns false if the path was never loaded.
func (l *Loader) Reload(path string) bool {
	l.mu.Lock()
	h, ok := l.byPath[path]
	l.mu.Unlock()
	if !ok {
		return false
	}
	go l.decode(path, h)
	return true
}

// LoadSync decodes path on the calling goroutine.
func (l *Loader) LoadSync(path string) (Handle, error) {
	l.mu.Lock()
	h, ok := l.byPath[path]
	if !ok {
		h = NewHandle()
		l.byPath[path] = h
	}
	l.mu.Unlock()

	src, err := DecodeFile(path)
	if err != nil {
		return h, err
	}
	l.storage.Set(h, src)
	return h, nil
}

func (l *Loader) decode(path string, h Handle) {
	src, err := DecodeFile(path)
	if err != nil {
		log.Printf("audio: failed to load %q: %v", path, err)
		return
	}
	l.storage.Set(h, src)
}

// DecodeFile reads and decodes one sound file based on its extension.
func DecodeFile(path string) (*AudioSource, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dec(bytes.NewReader(raw))
}

// Supported reports whether a decoder is registered for the path's extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}
