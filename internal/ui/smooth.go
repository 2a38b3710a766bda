package ui

import "github.com/charmbracelet/harmonica"

// smoothValue eases a render-side scalar toward a target, e.g. the tab
// indicator's column. Presentation smoothing only; the engine's own
// springs carry the animation semantics.
type smoothValue struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newSmoothValue(fps int, frequency, damping float64) smoothValue {
	return smoothValue{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *smoothValue) jump(v float64) {
	s.pos = v
	s.vel = 0
}

func (s *smoothValue) step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}
