// Package engine runs the shared per-frame loop that drives every live
// spring and timeline, and bridges view transitions to an optional
// platform capability.
package engine

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olivier-w/kinema/internal/motion"
)

// maxFrameDelta bounds the integration step after a stalled frame
// (backgrounded terminal, suspended process) so springs never explode.
const maxFrameDelta = 0.1

// Config configures an Engine. The zero value is usable: a 60fps
// timer-backed scheduler, no transition capability, discarded logs.
type Config struct {
	// FrameRate is the target tick rate of the default scheduler.
	// Ignored when Scheduler is set.
	FrameRate int

	// Scheduler supplies frame callbacks. Tests inject manual ones.
	Scheduler Scheduler

	// Driver is the platform transition capability. Nil means the
	// capability is absent and StartViewTransition uses its synchronous
	// fallback; checked once here, never re-detected.
	Driver Driver

	// Now is the clock used to derive frame deltas. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Engine owns the registries of live springs and timelines and the
// single frame loop that ticks them. The loop starts lazily with the
// first registration and stops within one tick of the registries
// draining; an idle engine schedules no callbacks at all.
//
// All registry state is guarded by one mutex; every tick mutates it from
// a single callback, and handle methods take the same lock, so insertion
// from inside a tick (a timeline step creating a spring) is safe. Key
// snapshots keep iteration stable under such insertion.
type Engine struct {
	mu        sync.Mutex
	springs   map[string]*motion.Spring
	timelines map[string]*motion.Timeline
	elements  map[string]*motion.Spring
	styles    map[string]struct{}

	sched       Scheduler
	driver      Driver
	now         func() time.Time
	logger      *slog.Logger
	cancelFrame func()
	running     bool
	last        time.Time
}

// New constructs an Engine. There is no package-level instance; the
// application root builds one and hands it to consumers.
func New(cfg Config) *Engine {
	sched := cfg.Scheduler
	if sched == nil {
		sched = newTimerScheduler(cfg.FrameRate)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		springs:   make(map[string]*motion.Spring),
		timelines: make(map[string]*motion.Timeline),
		elements:  make(map[string]*motion.Spring),
		styles:    make(map[string]struct{}),
		sched:     sched,
		driver:    cfg.Driver,
		now:       now,
		logger:    logger,
	}
}

// SpringHandle is the caller's grip on a registered spring. Reads and
// mutations go through the engine lock so they are safe against the
// running loop.
type SpringHandle struct {
	ID string

	e *Engine
	s *motion.Spring
}

// Position returns the spring's current value.
func (h SpringHandle) Position() float64 {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.s.Position
}

// Velocity returns the spring's current velocity.
func (h SpringHandle) Velocity() float64 {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.s.Velocity
}

// Settled reports whether the spring has come to rest at its target.
func (h SpringHandle) Settled() bool {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.s.Settled()
}

// Update manually advances the spring by dt seconds, for callers that
// drive integration themselves instead of relying on the loop.
func (h SpringHandle) Update(dt float64) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.s.Update(dt)
}

// SetTarget redirects the spring, preserving momentum. A spring that had
// settled and been pruned is re-registered, waking the loop if needed.
func (h SpringHandle) SetTarget(v float64) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.s.SetTarget(v)
	if _, ok := h.e.springs[h.ID]; !ok {
		h.e.elements[h.ID] = h.s
		h.e.springs[h.ID] = h.s
		h.e.ensureRunningLocked()
	}
}

// TimelineHandle is the caller's grip on a registered timeline.
type TimelineHandle struct {
	ID string

	e  *Engine
	tl *motion.Timeline
}

// Start begins or resumes playback. A completed timeline that was reset
// is re-registered, waking the loop if needed.
func (h TimelineHandle) Start() {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.tl.Start()
	if _, ok := h.e.timelines[h.ID]; !ok {
		h.e.timelines[h.ID] = h.tl
		h.e.ensureRunningLocked()
	}
}

// Pause freezes the timeline's clock in place.
func (h TimelineHandle) Pause() {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.tl.Pause()
}

// Reset discards all progress and returns the timeline to idle.
func (h TimelineHandle) Reset() {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.tl.Reset()
}

// Complete reports whether every step has fired or been skipped.
func (h TimelineHandle) Complete() bool {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.tl.Complete()
}

// StepIndex returns the index of the next unprocessed step.
func (h TimelineHandle) StepIndex() int {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.tl.StepIndex()
}

// Elapsed returns the timeline's accumulated play time in milliseconds.
func (h TimelineHandle) Elapsed() float64 {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.tl.Elapsed()
}

// CreateSpring registers a spring at initial and returns its handle.
// An empty id gets a generated one; an existing id is replaced. The
// frame loop starts if it was idle. Configuration errors surface here,
// never from the loop.
func (e *Engine) CreateSpring(id string, initial float64, cfg motion.Config) (SpringHandle, error) {
	return e.CreateSpringWithVelocity(id, initial, 0, cfg)
}

// CreateSpringWithVelocity registers a spring already in motion.
func (e *Engine) CreateSpringWithVelocity(id string, initial, velocity float64, cfg motion.Config) (SpringHandle, error) {
	s, err := motion.NewSpringWithVelocity(initial, velocity, cfg)
	if err != nil {
		return SpringHandle{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.elements[id] = s
	e.springs[id] = s
	e.ensureRunningLocked()
	return SpringHandle{ID: id, e: e, s: s}, nil
}

// CreateTimeline registers a timeline over steps and returns its handle.
// Step motion configs are validated here so a firing step can never fail
// inside the loop. The timeline is idle until Start is called, but it
// occupies the registry (and keeps the loop alive) from creation.
func (e *Engine) CreateTimeline(steps []motion.Step) (TimelineHandle, error) {
	for i, step := range steps {
		if _, err := motion.NewSpring(step.Motion.To, step.Motion.Spring); err != nil {
			return TimelineHandle{}, &StepConfigError{Index: i, Target: step.Target, Err: err}
		}
	}

	id := uuid.NewString()
	tl := motion.NewTimeline(steps, func(step motion.Step) {
		// Runs inside the tick with the lock already held.
		e.applyStepLocked(id, step)
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.timelines[id] = tl
	e.ensureRunningLocked()
	return TimelineHandle{ID: id, e: e, tl: tl}, nil
}

// applyStepLocked routes a fired step to its target element: a known
// spring is redirected with momentum intact (and re-registered if it had
// settled out of the active set), an unknown target gets a fresh spring
// at rest on the step's spring config.
func (e *Engine) applyStepLocked(timelineID string, step motion.Step) {
	e.logger.Debug("timeline step fired",
		slog.String("timeline", timelineID),
		slog.String("target", step.Target),
		slog.Float64("to", step.Motion.To))

	if s, ok := e.elements[step.Target]; ok {
		s.SetTarget(step.Motion.To)
		e.springs[step.Target] = s
		return
	}
	s, err := motion.NewSpring(0, step.Motion.Spring)
	if err != nil {
		// Validated at CreateTimeline; only reachable if defaults change.
		e.logger.Warn("dropping step with invalid spring config",
			slog.String("target", step.Target), slog.Any("error", err))
		return
	}
	s.SetTarget(step.Motion.To)
	e.elements[step.Target] = s
	e.springs[step.Target] = s
}

// RemoveSpring cancels a spring before it settles and forgets the
// element entirely. Removing an unknown id is a no-op; the loop notices
// an emptied registry on its next tick.
func (e *Engine) RemoveSpring(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.springs, id)
	delete(e.elements, id)
}

// RemoveTimeline cancels a timeline before it completes.
func (e *Engine) RemoveTimeline(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.timelines, id)
}

// Value returns the position of the element with the given id. Settled
// elements keep their final value until removed or destroyed.
func (e *Engine) Value(id string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.elements[id]
	if !ok {
		return 0, false
	}
	return s.Position, true
}

// Snapshot returns the positions of all known elements, for render
// loops that read the whole field once per frame.
func (e *Engine) Snapshot() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.elements))
	for id, s := range e.elements {
		out[id] = s.Position
	}
	return out
}

// Destroy tears the engine down: pending frame cancelled, registries and
// transition styles cleared. Idempotent, safe on an idle engine.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelFrame != nil {
		e.cancelFrame()
		e.cancelFrame = nil
	}
	if e.running {
		e.logger.Debug("frame loop stopped", slog.String("reason", "destroy"))
	}
	e.running = false
	e.springs = make(map[string]*motion.Spring)
	e.timelines = make(map[string]*motion.Timeline)
	e.elements = make(map[string]*motion.Spring)
	if e.driver != nil {
		for name := range e.styles {
			e.driver.RemoveTransitionStyle(name)
		}
	}
	e.styles = make(map[string]struct{})
}

func (e *Engine) ensureRunningLocked() {
	if e.running {
		return
	}
	e.running = true
	e.last = e.now()
	e.logger.Debug("frame loop started")
	e.requestFrameLocked()
}

func (e *Engine) requestFrameLocked() {
	e.cancelFrame = e.sched.Request(e.tick)
}

// tick is the shared frame callback: one clamped delta, springs before
// timelines (downstream code may read spring values from a step firing
// in the same tick), prune what settled or completed, then either ask
// for the next frame or go quiet.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		// Destroyed between scheduling and firing.
		return
	}
	e.cancelFrame = nil

	dt := now.Sub(e.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	e.last = now

	for _, id := range sortedKeys(e.springs) {
		s, ok := e.springs[id]
		if !ok {
			continue
		}
		s.Update(dt)
		if s.Settled() {
			delete(e.springs, id)
			e.logger.Debug("spring settled", slog.String("id", id))
		}
	}

	for _, id := range sortedKeys(e.timelines) {
		tl, ok := e.timelines[id]
		if !ok {
			continue
		}
		tl.Update(dt)
		if tl.Complete() {
			delete(e.timelines, id)
			e.logger.Debug("timeline complete", slog.String("id", id))
		}
	}

	if len(e.springs) == 0 && len(e.timelines) == 0 {
		e.running = false
		e.logger.Debug("frame loop stopped", slog.String("reason", "idle"))
		return
	}
	e.requestFrameLocked()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
