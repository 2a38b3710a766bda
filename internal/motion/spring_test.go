package motion

import (
	"math"
	"testing"
)

func TestNewSpringRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		initial float64
		cfg     Config
	}{
		{"negative mass", 0, Config{Mass: -1}},
		{"negative stiffness", 0, Config{Stiffness: -10}},
		{"negative damping", 0, Config{Damping: -5}},
		{"nan initial", math.NaN(), Config{}},
		{"inf initial", math.Inf(1), Config{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSpring(tc.initial, tc.cfg); err == nil {
				t.Fatalf("NewSpring(%v, %+v) succeeded, want error", tc.initial, tc.cfg)
			}
		})
	}
}

func TestNewSpringWithVelocityRejectsNonFiniteVelocity(t *testing.T) {
	if _, err := NewSpringWithVelocity(0, math.NaN(), Config{}); err == nil {
		t.Fatal("expected error for NaN velocity")
	}
}

func TestSpringConverges(t *testing.T) {
	s, err := NewSpring(0, Config{})
	if err != nil {
		t.Fatalf("NewSpring: %v", err)
	}
	s.SetTarget(100)

	const dt = 1.0 / 60
	steps := 0
	for !s.Settled() {
		s.Update(dt)
		steps++
		if steps > 2000 {
			t.Fatalf("spring did not settle within 2000 steps; position=%v velocity=%v", s.Position, s.Velocity)
		}
	}
	if math.Abs(s.Position-100) >= DefaultRestDelta {
		t.Fatalf("settled position = %v, want within %v of 100", s.Position, DefaultRestDelta)
	}
}

func TestSpringConvergesAcrossConfigs(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"gentle", Config{Stiffness: 120, Damping: 14, Mass: 1}},
		{"stiff", Config{Stiffness: 400, Damping: 40, Mass: 1}},
		{"heavy", Config{Stiffness: 170, Damping: 26, Mass: 3}},
		{"underdamped", Config{Stiffness: 200, Damping: 8, Mass: 1}},
	}
	const dt = 1.0 / 60
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSpring(-25, tc.cfg)
			if err != nil {
				t.Fatalf("NewSpring: %v", err)
			}
			s.SetTarget(75)
			for i := 0; i < 2000; i++ {
				if s.Settled() {
					return
				}
				s.Update(dt)
			}
			t.Fatalf("did not settle; position=%v velocity=%v", s.Position, s.Velocity)
		})
	}
}

func TestSetTargetPreservesVelocity(t *testing.T) {
	s, err := NewSpring(0, Config{})
	if err != nil {
		t.Fatalf("NewSpring: %v", err)
	}
	s.SetTarget(100)
	for i := 0; i < 10; i++ {
		s.Update(1.0 / 60)
	}
	v := s.Velocity
	if v == 0 {
		t.Fatal("expected nonzero velocity mid-flight")
	}

	s.SetTarget(-100)
	if s.Velocity != v {
		t.Fatalf("SetTarget changed velocity from %v to %v", v, s.Velocity)
	}
}

func TestSetTargetReactivatesSettledSpring(t *testing.T) {
	s, err := NewSpring(50, Config{})
	if err != nil {
		t.Fatalf("NewSpring: %v", err)
	}
	if !s.Settled() {
		t.Fatal("spring created at its target should be settled")
	}

	s.SetTarget(80)
	s.Update(1.0 / 60)
	if s.Settled() {
		t.Fatal("spring should be live again after retarget away from position")
	}
}

func TestPrecisionSeedsRestTolerances(t *testing.T) {
	s, err := NewSpring(0, Config{Precision: 0.5})
	if err != nil {
		t.Fatalf("NewSpring: %v", err)
	}
	s.SetTarget(0.4)
	s.Velocity = 0.4
	if !s.Settled() {
		t.Fatalf("expected settled within precision 0.5; position=%v velocity=%v", s.Position, s.Velocity)
	}
}
