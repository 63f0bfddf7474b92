package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RobWalt/bevy-kira-audio/backend"
	"github.com/RobWalt/bevy-kira-audio/backend/mock"
	"github.com/RobWalt/bevy-kira-audio/source"
)

type musicTrack struct{}

type sfxTrack struct{}

func newTestSource() *source.AudioSource {
	return source.FromData(make([][2]float64, 4800), 48000)
}

func newTestPlugin() (*Plugin, *mock.Backend) {
	b := mock.New()
	settings := DefaultSettings()
	settings.Backend = b
	p := New(settings)
	return p, b
}

func TestPluginLifecycle(t *testing.T) {
	p, _ := newTestPlugin()

	if p.Name() != "audio" {
		t.Errorf("unexpected service name %q", p.Name())
	}
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if !p.IsAvailable() {
		t.Error("plugin with a backend should report available")
	}
	// Start and Stop are idempotent.
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if p.IsAvailable() {
		t.Error("stopped plugin should be silent")
	}
}

func TestPluginPlaysThroughUpdate(t *testing.T) {
	p, b := newTestPlugin()
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	snd := p.Sources().Add(newTestSource())
	h := p.Audio().Play(snd).Commit()
	p.Update()

	if got := len(b.Handles()); got != 1 {
		t.Fatalf("expected one backend play, got %d", got)
	}
	if p.Audio().State(h).Kind != StatePlaying {
		t.Errorf("expected playing, got %v", p.Audio().State(h).Kind)
	}
	if got := p.Stats().Played; got != 1 {
		t.Errorf("expected played counter 1, got %d", got)
	}
}

func TestPluginSilentModeAcceptsCommands(t *testing.T) {
	p := New()

	defer func() {
		if recovered := recover(); recovered != nil {
			t.Errorf("silent-mode plugin panicked: %v", recovered)
		}
	}()

	snd := p.Sources().Add(newTestSource())
	h := p.Audio().Play(snd).Commit()
	p.Audio().SetVolume(0.5)
	p.Update()
	p.Update()

	if p.IsAvailable() {
		t.Error("plugin without a backend should not report available")
	}
	// The play intent stays queued until a backend shows up.
	if p.Audio().State(h).Kind != StateQueued {
		t.Errorf("expected queued, got %v", p.Audio().State(h).Kind)
	}
}

func TestAddChannelReturnsSameChannelPerTag(t *testing.T) {
	p, _ := newTestPlugin()

	music := AddChannel[musicTrack](p)
	sfx := AddChannel[sfxTrack](p)
	if music == sfx {
		t.Fatal("distinct tags must get distinct channels")
	}
	if again := AddChannel[musicTrack](p); again != music {
		t.Error("registering a tag twice must return the existing channel")
	}
	if music.ID() == p.Audio().ID() {
		t.Error("typed channel must not collide with the default channel")
	}
}

func TestTypedChannelsDispatchInRegistrationOrder(t *testing.T) {
	p, b := newTestPlugin()
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	music := AddChannel[musicTrack](p)

	snd := p.Sources().Add(newTestSource())
	onMusic := music.Play(snd).Commit()
	onMain := p.Audio().Play(snd).Commit()
	p.Update()

	if got := len(b.Handles()); got != 2 {
		t.Fatalf("expected both plays dispatched, got %d", got)
	}
	if music.State(onMusic).Kind != StatePlaying || p.Audio().State(onMain).Kind != StatePlaying {
		t.Error("both channels should have dispatched their plays")
	}
}

func TestDynamicChannels(t *testing.T) {
	p, b := newTestPlugin()
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	ambience := p.Channels().Channel("ambience")
	if p.Channels().Channel("ambience") != ambience {
		t.Fatal("same key must return the same channel")
	}
	if !p.Channels().Exists("ambience") {
		t.Error("created channel should exist")
	}

	snd := p.Sources().Add(newTestSource())
	ambience.Play(snd).Commit()
	p.Update()

	if got := len(b.Handles()); got != 1 {
		t.Fatalf("expected dynamic channel play dispatched, got %d", got)
	}

	p.Channels().Remove("ambience")
	if p.Channels().Exists("ambience") {
		t.Error("removed channel should not exist")
	}
}

func TestSettingsPresetsSeedChannels(t *testing.T) {
	half := 0.5
	settings := DefaultSettings()
	settings.Backend = mock.New()
	settings.Channels = map[string]ChannelPreset{
		"music": {Volume: &half, Paused: true},
	}
	p := New(settings)

	if !p.Channels().Exists("music") {
		t.Fatal("preset channel should be pre-created")
	}
	got := p.ChannelSettings(DynamicID("music"))
	if got.Volume != 0.5 || !got.Paused {
		t.Errorf("preset not applied, got %+v", got)
	}
	// Unset fields keep their defaults.
	if got.PlaybackRate != 1.0 {
		t.Errorf("expected default playback rate, got %v", got.PlaybackRate)
	}
}

func TestInitLoadsSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.yaml")
	raw := []byte("sample_rate: 44100\nchannels:\n  music:\n    volume: 0.25\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	p := New()
	if err := p.Init(path); err != nil {
		t.Fatal(err)
	}
	if p.settings.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", p.settings.SampleRate)
	}
	if got := p.ChannelSettings(DynamicID("music")).Volume; got != 0.25 {
		t.Errorf("expected preset volume 0.25, got %v", got)
	}
}

func TestInitRejectsBrokenSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New()
	if err := p.Init(path); err == nil {
		t.Error("expected an error for a broken settings file")
	}
}

func TestContributePublishesPlugin(t *testing.T) {
	p, _ := newTestPlugin()

	var published []any
	p.Contribute(func(resource any) {
		published = append(published, resource)
	})

	if len(published) != 1 || published[0] != any(p) {
		t.Errorf("expected the plugin itself to be published, got %v", published)
	}
}

func TestUpdateSweepsFinishedInstances(t *testing.T) {
	p, b := newTestPlugin()
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	snd := p.Sources().Add(newTestSource())
	h := p.Audio().Play(snd).Commit()
	p.Update()

	b.Handles()[0].SetState(backend.Stopped)
	p.Update()

	if p.Instances().Len() != 0 {
		t.Error("finished instance should be swept")
	}
	if p.Audio().State(h).Kind != StateStopped {
		t.Errorf("expected stopped, got %v", p.Audio().State(h).Kind)
	}
}
