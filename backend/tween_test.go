package backend

import (
	"math"
	"testing"
	"time"
)

func TestDefaultTweenIsShortAndLinear(t *testing.T) {
	tw := DefaultTween()
	if tw.Duration != 10*time.Millisecond {
		t.Errorf("expected 10ms default, got %v", tw.Duration)
	}
	if got := tw.Apply(0.5); got != 0.5 {
		t.Errorf("expected linear default easing, Apply(0.5)=%v", got)
	}
}

func TestApplyClampsProgress(t *testing.T) {
	tw := LinearTween(time.Second)
	if got := tw.Apply(-0.5); got != 0 {
		t.Errorf("Apply(-0.5)=%v, want 0", got)
	}
	if got := tw.Apply(1.5); got != 1 {
		t.Errorf("Apply(1.5)=%v, want 1", got)
	}
}

func TestApplyWithNilEasingIsLinear(t *testing.T) {
	tw := Tween{Duration: time.Second}
	if got := tw.Apply(0.25); got != 0.25 {
		t.Errorf("Apply(0.25)=%v, want 0.25", got)
	}
}

func TestEaseInPowi(t *testing.T) {
	tw := NewTween(time.Second, EaseInPowi(2))
	if got := tw.Apply(0.5); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("quadratic ease-in at 0.5 = %v, want 0.25", got)
	}
	if got := tw.Apply(1); got != 1 {
		t.Errorf("eased tween must end at 1, got %v", got)
	}
}

func TestEaseOutPowi(t *testing.T) {
	tw := NewTween(time.Second, EaseOutPowi(2))
	if got := tw.Apply(0.5); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("quadratic ease-out at 0.5 = %v, want 0.75", got)
	}
}
