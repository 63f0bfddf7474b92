package audio

import (
	"testing"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

func TestTypedIDsAreStablePerType(t *testing.T) {
	if TypedID[musicTrack]() != TypedID[musicTrack]() {
		t.Error("same tag type must yield the same id")
	}
	if TypedID[musicTrack]() == TypedID[sfxTrack]() {
		t.Error("distinct tag types must yield distinct ids")
	}
	if TypedID[MainTrack]() == DynamicID("MainTrack") {
		t.Error("typed and dynamic ids must never collide")
	}
}

func TestDynamicIDsCompareByKey(t *testing.T) {
	if DynamicID("music") != DynamicID("music") {
		t.Error("same key must yield the same id")
	}
	if DynamicID("music") == DynamicID("sfx") {
		t.Error("distinct keys must yield distinct ids")
	}
}

func TestChannelIDString(t *testing.T) {
	if got := DynamicID("music").String(); got == "" {
		t.Error("dynamic id should have a readable name")
	}
	if got := TypedID[MainTrack]().String(); got == "" {
		t.Error("typed id should have a readable name")
	}
}

func TestChannelSettingsApplyComposition(t *testing.T) {
	sound := backend.SoundData{Settings: backend.DefaultSoundSettings()}
	sound.Settings.Volume = 0.8
	sound.Settings.PlaybackRate = 2.0

	settings := defaultChannelSettings()
	settings.Volume = 0.5
	settings.PlaybackRate = 0.5
	settings.Panning = 0.9
	settings.apply(&sound)

	if got := sound.Settings.Volume; got < 0.3999 || got > 0.4001 {
		t.Errorf("volume should compose multiplicatively, got %v", got)
	}
	if sound.Settings.PlaybackRate != 1.0 {
		t.Errorf("rate should compose multiplicatively, got %v", sound.Settings.PlaybackRate)
	}
	if sound.Settings.Panning != 0.9 {
		t.Errorf("panning should come from the channel, got %v", sound.Settings.Panning)
	}
}

func TestStateKindStrings(t *testing.T) {
	kinds := map[StateKind]string{
		StateQueued:   "queued",
		StatePlaying:  "playing",
		StatePausing:  "pausing",
		StatePaused:   "paused",
		StateStopping: "stopping",
		StateStopped:  "stopped",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("%d.String()=%q, want %q", kind, got, want)
		}
	}
}
