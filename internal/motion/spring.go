package motion

import (
	"errors"
	"fmt"
	"math"
)

// Default spring parameters, used when a Config field is left zero.
const (
	DefaultStiffness = 170.0
	DefaultDamping   = 26.0
	DefaultMass      = 1.0
	DefaultRestDelta = 0.01
	DefaultRestSpeed = 0.01
)

var (
	ErrNonPositiveMass      = errors.New("motion: spring mass must be positive")
	ErrNonPositiveStiffness = errors.New("motion: spring stiffness must be positive")
	ErrNegativeDamping      = errors.New("motion: spring damping must be non-negative")
)

// Config holds the physical parameters of a damped spring.
// Zero-valued fields fall back to the package defaults; explicitly
// negative values are rejected at creation.
type Config struct {
	Stiffness float64
	Damping   float64
	Mass      float64

	// Precision, when set, seeds both RestDelta and RestSpeed unless
	// they are themselves set.
	Precision float64
	RestDelta float64
	RestSpeed float64
}

func (c Config) withDefaults() Config {
	if c.Stiffness == 0 {
		c.Stiffness = DefaultStiffness
	}
	if c.Mass == 0 {
		c.Mass = DefaultMass
	}
	if c.Damping == 0 {
		c.Damping = DefaultDamping
	}
	if c.RestDelta == 0 {
		if c.Precision != 0 {
			c.RestDelta = c.Precision
		} else {
			c.RestDelta = DefaultRestDelta
		}
	}
	if c.RestSpeed == 0 {
		if c.Precision != 0 {
			c.RestSpeed = c.Precision
		} else {
			c.RestSpeed = DefaultRestSpeed
		}
	}
	return c
}

func (c Config) validate() error {
	if c.Mass <= 0 {
		return ErrNonPositiveMass
	}
	if c.Stiffness <= 0 {
		return ErrNonPositiveStiffness
	}
	if c.Damping < 0 {
		return ErrNegativeDamping
	}
	return nil
}

// Spring is a damped oscillator whose Position converges toward a target.
// It carries no scheduling knowledge; callers advance it with Update and
// a delta time they have already clamped.
type Spring struct {
	Position float64
	Velocity float64

	target float64
	cfg    Config
}

// NewSpring creates a spring resting at initial with the target set to
// initial. Configuration problems fail here, never inside the integration
// loop.
func NewSpring(initial float64, cfg Config) (*Spring, error) {
	return NewSpringWithVelocity(initial, 0, cfg)
}

// NewSpringWithVelocity creates a spring already in motion, e.g. to hand
// off momentum from a drag gesture.
func NewSpringWithVelocity(initial, velocity float64, cfg Config) (*Spring, error) {
	if !isFinite(initial) {
		return nil, fmt.Errorf("motion: spring initial value %v is not finite", initial)
	}
	if !isFinite(velocity) {
		return nil, fmt.Errorf("motion: spring initial velocity %v is not finite", velocity)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Spring{
		Position: initial,
		Velocity: velocity,
		target:   initial,
		cfg:      cfg,
	}, nil
}

// Update advances the spring by one semi-implicit Euler step. dt is in
// seconds and assumed already clamped by the caller.
func (s *Spring) Update(dt float64) {
	force := -s.cfg.Stiffness * (s.Position - s.target)
	damping := -s.cfg.Damping * s.Velocity
	accel := (force + damping) / s.cfg.Mass
	s.Velocity += accel * dt
	s.Position += s.Velocity * dt
}

// SetTarget redirects the spring. Velocity is preserved so a mid-flight
// redirect stays continuous instead of snapping back to rest.
func (s *Spring) SetTarget(target float64) {
	s.target = target
}

// Target returns the value the spring is converging toward.
func (s *Spring) Target() float64 {
	return s.target
}

// Settled reports whether position and velocity are both within the
// configured rest tolerances of the target.
func (s *Spring) Settled() bool {
	return math.Abs(s.Position-s.target) < s.cfg.RestDelta &&
		math.Abs(s.Velocity) < s.cfg.RestSpeed
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
