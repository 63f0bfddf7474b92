package beepout

import (
	"math"
	"sync/atomic"

	"github.com/RobWalt/bevy-kira-audio/backend"
)

// ramp moves a parameter toward a target over a number of frames, following
// an easing curve. Mutated only on the audio goroutine.
type ramp struct {
	value  float64
	from   float64
	target float64
	frame  float64
	total  float64
	easing backend.Easing
}

func newRamp(value float64) ramp {
	return ramp{value: value, target: value}
}

func (r *ramp) set(target float64, tween backend.Tween, sampleRate int) {
	frames := tween.Duration.Seconds() * float64(sampleRate)
	if frames < 1 {
		r.value = target
		r.target = target
		r.total = 0
		return
	}
	r.from = r.value
	r.target = target
	r.frame = 0
	r.total = frames
	r.easing = tween.Easing
}

func (r *ramp) next() float64 {
	if r.total == 0 {
		return r.value
	}
	r.frame++
	t := r.frame / r.total
	if t >= 1 {
		r.value = r.target
		r.total = 0
		return r.value
	}
	if r.easing != nil {
		t = r.easing(t)
	}
	r.value = r.from + (r.target-r.from)*t
	return r.value
}

func (r *ramp) done() bool {
	return r.total == 0
}

type transition int

const (
	transitionNone transition = iota
	transitionPause
	transitionStop
)

// sound streams one SoundData instance: an interpolating sampler honoring
// playback and loop regions, reverse, and dynamic rate, with volume, panning
// and fades as tween-ramped parameters. All fields except the published
// atomics are owned by the audio goroutine.
type sound struct {
	frames   [][2]float64
	dataRate int
	// source frames per output frame at playback rate 1
	srStep float64
	// output sample rate, for converting tween durations to frames
	outRate int

	pos float64
	dir float64

	volume ramp
	pan    ramp
	rate   ramp
	// fade multiplies the volume for fade-in, pause, resume and stop ramps
	fade    ramp
	pending transition

	startFrame float64
	endFrame   float64
	hasLoop    bool
	loopStart  float64
	loopEnd    float64

	paused  bool
	drained bool

	state    atomic.Int32
	position atomic.Uint64
}

func newSound(data backend.SoundData, outRate int) *sound {
	settings := data.Settings
	s := &sound{
		frames:   data.Samples,
		dataRate: data.SampleRate,
		srStep:   float64(data.SampleRate) / float64(outRate),
		outRate:  outRate,
		dir:      1,
		volume:   newRamp(settings.Volume),
		pan:      newRamp(settings.Panning),
		rate:     newRamp(settings.PlaybackRate),
		fade:     newRamp(1),
	}

	total := float64(len(data.Samples))
	s.endFrame = total
	if region := settings.PlaybackRegion; region != nil {
		s.startFrame = clamp(region.Start*float64(data.SampleRate), 0, total)
		if region.End > 0 {
			s.endFrame = clamp(region.End*float64(data.SampleRate), s.startFrame, total)
		}
	}
	if region := settings.LoopRegion; region != nil {
		s.hasLoop = true
		s.loopStart = clamp(region.Start*float64(data.SampleRate), 0, total)
		s.loopEnd = s.endFrame
		if region.End > 0 {
			s.loopEnd = clamp(region.End*float64(data.SampleRate), s.loopStart, s.endFrame)
		}
	}

	if settings.Reverse {
		s.dir = -1
		s.pos = s.endFrame - 1
		if s.pos < 0 {
			s.pos = 0
		}
	} else {
		s.pos = s.startFrame
	}

	if settings.FadeIn != nil {
		s.fade = newRamp(0)
		s.fade.set(1, *settings.FadeIn, outRate)
	}

	if settings.PausedAtStart {
		s.paused = true
		s.setState(backend.Paused)
	} else {
		s.setState(backend.Playing)
	}
	s.publish()
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func (s *sound) setState(state backend.PlaybackState) {
	s.state.Store(int32(state))
}

func (s *sound) publish() {
	seconds := 0.0
	if s.dataRate > 0 {
		seconds = s.pos / float64(s.dataRate)
	}
	s.position.Store(math.Float64bits(seconds))
}

// Stream implements beep.Streamer. A paused sound keeps emitting silence so
// it stays in the mixer; a drained sound is removed by returning false.
func (s *sound) Stream(samples [][2]float64) (int, bool) {
	if s.drained {
		return 0, false
	}
	for i := range samples {
		if s.paused || s.drained {
			samples[i] = [2]float64{}
			continue
		}
		samples[i] = s.nextFrame()
	}
	s.publish()
	return len(samples), true
}

func (s *sound) Err() error {
	return nil
}

func (s *sound) nextFrame() [2]float64 {
	if s.outOfBounds() {
		if s.hasLoop {
			s.wrap()
		} else {
			s.finish()
			return [2]float64{}
		}
	}

	frame := s.interpolate()
	gain := s.volume.next() * s.fade.next()
	p := s.pan.next()
	out := [2]float64{
		frame[0] * gain * math.Cos(p*math.Pi/2),
		frame[1] * gain * math.Sin(p*math.Pi/2),
	}

	if s.pending != transitionNone && s.fade.done() {
		s.completeTransition()
	}

	s.pos += s.dir * s.rate.next() * s.srStep
	return out
}

func (s *sound) outOfBounds() bool {
	if len(s.frames) == 0 {
		return true
	}
	if s.dir > 0 {
		if s.hasLoop && s.pos >= s.loopEnd {
			return true
		}
		return s.pos >= s.endFrame
	}
	if s.hasLoop && s.pos < s.loopStart {
		return true
	}
	return s.pos < s.startFrame
}

func (s *sound) wrap() {
	span := s.loopEnd - s.loopStart
	if span <= 0 {
		s.finish()
		return
	}
	if s.dir > 0 {
		s.pos = s.loopStart + math.Mod(s.pos-s.loopStart, span)
	} else {
		s.pos = s.loopEnd - math.Mod(s.loopEnd-s.pos, span)
	}
}

func (s *sound) interpolate() [2]float64 {
	idx := int(s.pos)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.frames)-1 {
		return s.frames[len(s.frames)-1]
	}
	frac := s.pos - float64(idx)
	a, b := s.frames[idx], s.frames[idx+1]
	return [2]float64{
		a[0] + (b[0]-a[0])*frac,
		a[1] + (b[1]-a[1])*frac,
	}
}

func (s *sound) finish() {
	s.drained = true
	s.paused = false
	s.pending = transitionNone
	s.setState(backend.Stopped)
}

func (s *sound) completeTransition() {
	switch s.pending {
	case transitionPause:
		s.paused = true
		s.pending = transitionNone
		s.setState(backend.Paused)
	case transitionStop:
		s.finish()
	}
}

// Command bodies, run on the audio goroutine.

func (s *sound) pauseCmd(tween backend.Tween) {
	if s.drained || s.paused {
		return
	}
	s.pending = transitionPause
	s.setState(backend.Pausing)
	s.fade.set(0, tween, s.outRate)
	if s.fade.done() {
		s.completeTransition()
	}
}

func (s *sound) resumeCmd(tween backend.Tween) {
	if s.drained {
		return
	}
	s.paused = false
	s.pending = transitionNone
	s.setState(backend.Playing)
	s.fade.set(1, tween, s.outRate)
}

func (s *sound) stopCmd(tween backend.Tween) {
	if s.drained {
		return
	}
	if s.paused {
		s.finish()
		return
	}
	s.pending = transitionStop
	s.setState(backend.Stopping)
	s.fade.set(0, tween, s.outRate)
	if s.fade.done() {
		s.completeTransition()
	}
}

// handle implements backend.Handle for one playing sound.
type handle struct {
	engine *Engine
	sound  *sound
}

func (h *handle) Stop(tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.stopCmd(tween) })
}

func (h *handle) Pause(tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.pauseCmd(tween) })
}

func (h *handle) Resume(tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.resumeCmd(tween) })
}

func (h *handle) SetVolume(volume float64, tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.volume.set(volume, tween, h.sound.outRate) })
}

func (h *handle) SetPanning(panning float64, tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.pan.set(panning, tween, h.sound.outRate) })
}

func (h *handle) SetPlaybackRate(rate float64, tween backend.Tween) error {
	return h.engine.submit(func() { h.sound.rate.set(rate, tween, h.sound.outRate) })
}

func (h *handle) State() backend.PlaybackState {
	return backend.PlaybackState(h.sound.state.Load())
}

func (h *handle) Position() float64 {
	return math.Float64frombits(h.sound.position.Load())
}
