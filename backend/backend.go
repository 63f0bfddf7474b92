// Package backend defines the contract between the audio dispatch layer and a
// real-time mixing backend. A backend accepts decoded sound data, hands back a
// per-sound handle, and may transiently reject any command when its internal
// command queue is saturated.
package backend

import (
	"errors"
)

// Sentinel errors
var (
	// ErrCommandQueueFull signals that the backend could not accept a command
	// right now. The command is safe to repeat on a later tick.
	ErrCommandQueueFull = errors.New("backend command queue full")

	// ErrHandleStopped is returned for operations on a sound that already
	// reached its terminal state.
	ErrHandleStopped = errors.New("sound handle is stopped")

	// ErrBackendClosed is returned when the backend has been shut down.
	ErrBackendClosed = errors.New("audio backend closed")
)

// IsRetryable reports whether err is a transient capacity rejection that
// should be retried, as opposed to a logical failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommandQueueFull)
}

// PlaybackState is the backend-reported state of one sound.
type PlaybackState int

const (
	Playing PlaybackState = iota
	Pausing
	Paused
	Stopping
	Stopped
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Pausing:
		return "pausing"
	case Paused:
		return "paused"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Handle controls a single sound that was submitted to the backend.
// All mutating calls are non-blocking: a saturated backend returns
// ErrCommandQueueFull instead of waiting.
type Handle interface {
	Stop(tween Tween) error
	Pause(tween Tween) error
	Resume(tween Tween) error
	SetVolume(volume float64, tween Tween) error
	SetPanning(panning float64, tween Tween) error
	SetPlaybackRate(rate float64, tween Tween) error

	// State returns the current playback state as seen by the audio thread.
	State() PlaybackState
	// Position returns the playback position in seconds.
	Position() float64
}

// Backend is a real-time mixer that plays decoded sounds.
type Backend interface {
	// Play submits a sound for playback and returns its handle.
	// Returns ErrCommandQueueFull when the submission queue is saturated.
	Play(sound SoundData) (Handle, error)
}
