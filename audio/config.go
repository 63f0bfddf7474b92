package audio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

// ChannelPreset seeds a dynamic channel's persistent settings at startup.
// Unset fields keep their defaults.
type ChannelPreset struct {
	Volume       *float64 `yaml:"volume"`
	Panning      *float64 `yaml:"panning"`
	PlaybackRate *float64 `yaml:"playback_rate"`
	Paused       bool     `yaml:"paused"`
}

func (p ChannelPreset) settings() ChannelSettings {
	settings := defaultChannelSettings()
	if p.Volume != nil {
		settings.Volume = *p.Volume
	}
	if p.Panning != nil {
		settings.Panning = *p.Panning
	}
	if p.PlaybackRate != nil {
		settings.PlaybackRate = *p.PlaybackRate
	}
	settings.Paused = p.Paused
	return settings
}

// Settings configures the plugin.
type Settings struct {
	// SampleRate of the output device.
	SampleRate int `yaml:"sample_rate"`
	// BufferSize of the output device, in frames.
	BufferSize int `yaml:"buffer_size"`
	// CommandCapacity bounds the backend's internal command queue. A full
	// queue rejects commands, which the dispatcher retries next tick.
	CommandCapacity int `yaml:"command_capacity"`
	// Channels pre-creates dynamic channels with the given presets.
	Channels map[string]ChannelPreset `yaml:"channels"`

	// Backend overrides the default speaker output. Used by tests and hosts
	// that bring their own mixer.
	Backend backend.Backend `yaml:"-"`
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() *Settings {
	return &Settings{
		SampleRate:      48000,
		BufferSize:      2400,
		CommandCapacity: 128,
	}
}

// LoadSettings reads settings from a YAML file, filling unset fields with
// defaults.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	settings := DefaultSettings()
	if err := yaml.Unmarshal(raw, settings); err != nil {
		return nil, fmt.Errorf("parsing audio settings: %w", err)
	}
	return settings, nil
}
