package motion

import (
	"strconv"
	"strings"
)

// Step is one scheduled action in a timeline: when it fires, Motion is
// applied to the element named by Target.
//
// At controls the firing time:
//
//	""      fire in order, as soon as the cursor reaches the step
//	"250"   fire once elapsed time reaches 250ms
//	"+100"  fire 100ms after the nearest preceding absolute step
//	"-50"   fire 50ms before the nearest preceding absolute step
//
// A malformed At never fires; the step is skipped without executing so
// the rest of the sequence stays intact.
type Step struct {
	Target string
	Motion MotionConfig
	At     string
}

// MotionConfig is the action a firing step applies to its target.
type MotionConfig struct {
	To     float64
	Spring Config
}

type specKind uint8

const (
	specInOrder specKind = iota
	specAt
	specNever
)

// timeSpec is a Step.At resolved once at construction, so malformed
// input is caught at a single point instead of re-parsed every tick.
type timeSpec struct {
	kind specKind
	at   float64 // ms, valid when kind == specAt
}

// resolveSpecs turns the At strings of steps into firing specs. Relative
// offsets resolve against the nearest preceding absolute step, walking
// backward through in-order and relative steps, with 0 as the base when
// none exists.
func resolveSpecs(steps []Step) []timeSpec {
	specs := make([]timeSpec, len(steps))
	lastAbsolute := 0.0
	for i, step := range steps {
		raw := strings.TrimSpace(step.At)
		switch {
		case raw == "":
			specs[i] = timeSpec{kind: specInOrder}
		case raw[0] == '+' || raw[0] == '-':
			offset, err := strconv.ParseFloat(raw[1:], 64)
			if err != nil {
				specs[i] = timeSpec{kind: specNever}
				continue
			}
			if raw[0] == '-' {
				offset = -offset
			}
			specs[i] = timeSpec{kind: specAt, at: lastAbsolute + offset}
		default:
			at, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				specs[i] = timeSpec{kind: specNever}
				continue
			}
			specs[i] = timeSpec{kind: specAt, at: at}
			lastAbsolute = at
		}
	}
	return specs
}

// Timeline executes an ordered list of steps against a time cursor.
// Time accumulates only while running; steps fire strictly in declared
// order. It is only mutated from the engine's single tick loop.
type Timeline struct {
	steps  []Step
	specs  []timeSpec
	onStep func(Step)

	elapsed float64 // ms
	index   int
	running bool
}

// NewTimeline builds a timeline over steps. onStep is invoked for each
// step as it fires; it may be nil.
func NewTimeline(steps []Step, onStep func(Step)) *Timeline {
	return &Timeline{
		steps:  steps,
		specs:  resolveSpecs(steps),
		onStep: onStep,
	}
}

// Start begins or resumes playback.
func (t *Timeline) Start() {
	t.running = true
}

// Pause freezes the time cursor in place; Start resumes from it.
func (t *Timeline) Pause() {
	t.running = false
}

// Reset discards all progress: cursor back to the first step, elapsed
// time to zero, playback stopped. Distinct from Pause, which preserves
// position.
func (t *Timeline) Reset() {
	t.elapsed = 0
	t.index = 0
	t.running = false
}

// Running reports whether the cursor is advancing.
func (t *Timeline) Running() bool {
	return t.running
}

// Complete reports whether every step has been passed.
func (t *Timeline) Complete() bool {
	return t.index >= len(t.steps)
}

// StepIndex returns the index of the next unprocessed step.
func (t *Timeline) StepIndex() int {
	return t.index
}

// Elapsed returns accumulated play time in milliseconds.
func (t *Timeline) Elapsed() float64 {
	return t.elapsed
}

// Update advances the cursor by dt seconds and fires every step whose
// firing condition now holds, in declared order. No-op unless running.
func (t *Timeline) Update(dt float64) {
	if !t.running {
		return
	}
	t.elapsed += dt * 1000
	for t.index < len(t.steps) {
		spec := t.specs[t.index]
		switch spec.kind {
		case specNever:
			// Skip without executing; a bad step must not stall the rest.
			t.index++
			continue
		case specAt:
			if t.elapsed < spec.at {
				return
			}
		}
		step := t.steps[t.index]
		t.index++
		if t.onStep != nil {
			t.onStep(step)
		}
	}
}
