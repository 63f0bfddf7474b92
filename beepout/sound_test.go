package beepout

import (
	"math"
	"testing"
	"time"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

func constantFrames(n int, v float64) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{v, v}
	}
	return out
}

func soundData(frames [][2]float64, rate int) backend.SoundData {
	return backend.SoundData{
		Samples:    frames,
		SampleRate: rate,
		Settings:   backend.DefaultSoundSettings(),
	}
}

func stream(s *sound, n int) ([][2]float64, bool) {
	buf := make([][2]float64, n)
	_, ok := s.Stream(buf)
	return buf, ok
}

func TestRampHoldsValueWithoutTarget(t *testing.T) {
	r := newRamp(0.5)
	for i := 0; i < 10; i++ {
		if got := r.next(); got != 0.5 {
			t.Fatalf("idle ramp moved to %v", got)
		}
	}
}

func TestRampReachesTargetOverDuration(t *testing.T) {
	r := newRamp(0)
	// 10 frames at 1000 Hz
	r.set(1, backend.LinearTween(10*time.Millisecond), 1000)

	last := 0.0
	for i := 0; i < 10; i++ {
		v := r.next()
		if v < last {
			t.Fatalf("ramp went backwards at frame %d: %v < %v", i, v, last)
		}
		last = v
	}
	if last != 1 {
		t.Errorf("ramp should end at target, got %v", last)
	}
	if !r.done() {
		t.Error("ramp should report done")
	}
}

func TestRampWithSubFrameDurationJumps(t *testing.T) {
	r := newRamp(0)
	r.set(1, backend.Tween{}, 48000)
	if r.value != 1 || !r.done() {
		t.Errorf("zero-duration tween should jump, got %v", r.value)
	}
}

func TestRampAppliesEasing(t *testing.T) {
	r := newRamp(0)
	r.set(1, backend.NewTween(10*time.Millisecond, backend.EaseInPowi(2)), 1000)

	r.next() // t=0.1 eased to 0.01
	if math.Abs(r.value-0.01) > 1e-9 {
		t.Errorf("expected eased value 0.01, got %v", r.value)
	}
}

func TestSoundStreamsCenteredPan(t *testing.T) {
	s := newSound(soundData(constantFrames(100, 1), 1000), 1000)

	buf, ok := stream(s, 10)
	if !ok {
		t.Fatal("live sound should keep streaming")
	}
	// Center pan is constant-power: both channels at cos(pi/4).
	want := math.Cos(math.Pi / 4)
	if math.Abs(buf[0][0]-want) > 1e-9 || math.Abs(buf[0][1]-want) > 1e-9 {
		t.Errorf("expected both channels at %v, got %v", want, buf[0])
	}
}

func TestSoundHardPan(t *testing.T) {
	data := soundData(constantFrames(100, 1), 1000)
	data.Settings.Panning = 0.0
	s := newSound(data, 1000)

	buf, _ := stream(s, 1)
	if math.Abs(buf[0][0]-1) > 1e-9 {
		t.Errorf("hard left should keep the left channel, got %v", buf[0][0])
	}
	if math.Abs(buf[0][1]) > 1e-9 {
		t.Errorf("hard left should silence the right channel, got %v", buf[0][1])
	}
}

func TestSoundFinishesAndDrains(t *testing.T) {
	s := newSound(soundData(constantFrames(20, 1), 1000), 1000)

	stream(s, 64)
	if s.state.Load() != int32(backend.Stopped) {
		t.Error("finished sound should report stopped")
	}
	if _, ok := stream(s, 4); ok {
		t.Error("drained sound should leave the mixer")
	}
}

func TestSoundLoopsForever(t *testing.T) {
	data := soundData(constantFrames(50, 1), 1000)
	data.Settings.LoopRegion = &backend.Region{}
	s := newSound(data, 1000)

	for i := 0; i < 20; i++ {
		if _, ok := stream(s, 64); !ok {
			t.Fatal("looping sound must never drain")
		}
	}
	if s.state.Load() != int32(backend.Playing) {
		t.Error("looping sound should stay playing")
	}
}

func TestSoundLoopRegionWraps(t *testing.T) {
	// 1s of audio at 1000 Hz, loop between 0.2s and 0.4s.
	data := soundData(constantFrames(1000, 1), 1000)
	data.Settings.LoopRegion = &backend.Region{Start: 0.2, End: 0.4}
	s := newSound(data, 1000)

	stream(s, 1000)
	pos := math.Float64frombits(s.position.Load())
	if pos < 0.2 || pos > 0.4 {
		t.Errorf("position should stay inside the loop region, got %v", pos)
	}
}

func TestSoundPlaybackRegion(t *testing.T) {
	data := soundData(constantFrames(1000, 1), 1000)
	data.Settings.PlaybackRegion = &backend.Region{Start: 0.5, End: 0.6}
	s := newSound(data, 1000)

	if pos := math.Float64frombits(s.position.Load()); pos != 0.5 {
		t.Fatalf("expected start position 0.5, got %v", pos)
	}
	stream(s, 200)
	if s.state.Load() != int32(backend.Stopped) {
		t.Error("sound should stop at the region end")
	}
}

func TestSoundReverseStartsAtEnd(t *testing.T) {
	data := soundData(constantFrames(1000, 1), 1000)
	data.Settings.Reverse = true
	s := newSound(data, 1000)

	start := math.Float64frombits(s.position.Load())
	stream(s, 100)
	after := math.Float64frombits(s.position.Load())
	if after >= start {
		t.Errorf("reverse playback should move backwards: %v -> %v", start, after)
	}

	stream(s, 2000)
	if s.state.Load() != int32(backend.Stopped) {
		t.Error("reverse playback should stop at the start")
	}
}

func TestSoundPausedAtStartEmitsSilence(t *testing.T) {
	data := soundData(constantFrames(100, 1), 1000)
	data.Settings.PausedAtStart = true
	s := newSound(data, 1000)

	if s.state.Load() != int32(backend.Paused) {
		t.Fatal("sound should start paused")
	}
	buf, ok := stream(s, 10)
	if !ok {
		t.Fatal("paused sound must stay in the mixer")
	}
	for i, frame := range buf {
		if frame != ([2]float64{}) {
			t.Fatalf("paused sound leaked audio at frame %d: %v", i, frame)
		}
	}
}

func TestSoundFadeInStartsQuiet(t *testing.T) {
	data := soundData(constantFrames(1000, 1), 1000)
	fade := backend.LinearTween(100 * time.Millisecond)
	data.Settings.FadeIn = &fade
	s := newSound(data, 1000)

	buf, _ := stream(s, 1)
	if math.Abs(buf[0][0]) > 0.05 {
		t.Errorf("fade-in should start near silence, got %v", buf[0][0])
	}

	stream(s, 200)
	buf, _ = stream(s, 1)
	want := math.Cos(math.Pi / 4)
	if math.Abs(buf[0][0]-want) > 1e-6 {
		t.Errorf("fade-in should reach full volume, got %v", buf[0][0])
	}
}

func TestPauseFadesThenSilences(t *testing.T) {
	s := newSound(soundData(constantFrames(1000, 1), 1000), 1000)
	stream(s, 10)

	s.pauseCmd(backend.LinearTween(10 * time.Millisecond))
	if s.state.Load() != int32(backend.Pausing) {
		t.Fatal("sound should be pausing during the fade")
	}

	stream(s, 64)
	if s.state.Load() != int32(backend.Paused) {
		t.Error("sound should be paused after the fade")
	}
	buf, ok := stream(s, 4)
	if !ok || buf[0] != ([2]float64{}) {
		t.Error("paused sound should emit silence and stay in the mixer")
	}
}

func TestImmediatePauseSkipsFade(t *testing.T) {
	s := newSound(soundData(constantFrames(1000, 1), 1000), 1000)
	s.pauseCmd(backend.Tween{})
	if s.state.Load() != int32(backend.Paused) {
		t.Error("zero-duration pause should apply immediately")
	}
}

func TestResumeRestoresPlayback(t *testing.T) {
	s := newSound(soundData(constantFrames(1000, 1), 1000), 1000)
	s.pauseCmd(backend.Tween{})
	s.resumeCmd(backend.Tween{})

	if s.state.Load() != int32(backend.Playing) {
		t.Fatal("resumed sound should report playing")
	}
	buf, _ := stream(s, 1)
	if buf[0] == ([2]float64{}) {
		t.Error("resumed sound should emit audio")
	}
}

func TestStopFadesThenDrains(t *testing.T) {
	s := newSound(soundData(constantFrames(1000, 1), 1000), 1000)
	s.stopCmd(backend.LinearTween(10 * time.Millisecond))
	if s.state.Load() != int32(backend.Stopping) {
		t.Fatal("sound should be stopping during the fade")
	}

	stream(s, 64)
	if s.state.Load() != int32(backend.Stopped) {
		t.Error("sound should stop after the fade")
	}
	if _, ok := stream(s, 4); ok {
		t.Error("stopped sound should drain out of the mixer")
	}
}

func TestStopWhilePausedIsImmediate(t *testing.T) {
	s := newSound(soundData(constantFrames(1000, 1), 1000), 1000)
	s.pauseCmd(backend.Tween{})
	s.stopCmd(backend.LinearTween(time.Second))

	if s.state.Load() != int32(backend.Stopped) {
		t.Error("stopping a paused sound should not wait for a fade")
	}
}

func TestSampleRateConversionKeepsDuration(t *testing.T) {
	// 0.5s of source audio at 500 Hz played through a 1000 Hz output should
	// take about 500 output frames.
	s := newSound(soundData(constantFrames(250, 1), 500), 1000)

	alive := 0
	for i := 0; i < 20; i++ {
		buf := make([][2]float64, 50)
		if _, ok := s.Stream(buf); !ok {
			break
		}
		for _, frame := range buf {
			if frame != ([2]float64{}) {
				alive++
			}
		}
	}
	if alive < 450 || alive > 550 {
		t.Errorf("expected ~500 audible output frames, got %d", alive)
	}
}
