package backend

import (
	"math"
	"time"
)

// Easing maps linear progress in [0,1] to eased progress in [0,1].
type Easing func(t float64) float64

// Built-in easing curves.
var (
	Linear Easing = func(t float64) float64 { return t }

	EaseInPowi = func(power int) Easing {
		return func(t float64) float64 { return math.Pow(t, float64(power)) }
	}

	EaseOutPowi = func(power int) Easing {
		return func(t float64) float64 { return 1 - math.Pow(1-t, float64(power)) }
	}
)

// Tween is a timed parameter transition. Transitions are tweened instead of
// applied instantaneously to avoid audible clicks.
type Tween struct {
	Duration time.Duration
	Easing   Easing
}

// DefaultTween is short enough to be imperceptible as a fade while still
// avoiding discontinuity artifacts.
func DefaultTween() Tween {
	return Tween{Duration: 10 * time.Millisecond, Easing: Linear}
}

// LinearTween creates a linear tween with the given duration.
func LinearTween(duration time.Duration) Tween {
	return Tween{Duration: duration, Easing: Linear}
}

// NewTween creates a tween with the given duration and easing.
func NewTween(duration time.Duration, easing Easing) Tween {
	return Tween{Duration: duration, Easing: easing}
}

// Apply evaluates the tween at linear progress t in [0,1].
func (tw Tween) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if tw.Easing == nil {
		return t
	}
	return tw.Easing(t)
}
