package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeAnimation completes when its channel is fed.
type fakeAnimation struct {
	finished  chan error
	cancelled bool
}

func (a *fakeAnimation) Finished() <-chan error { return a.finished }
func (a *fakeAnimation) Cancel()                { a.cancelled = true }

// fakeDriver records style bookkeeping and hands out fakeAnimations.
type fakeDriver struct {
	styles   map[string]TransitionStyle
	removed  []string
	anim     *fakeAnimation
	startErr error
	started  int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		styles: make(map[string]TransitionStyle),
		anim:   &fakeAnimation{finished: make(chan error, 1)},
	}
}

func (d *fakeDriver) Start(update func() error) (Animation, error) {
	d.started++
	if d.startErr != nil {
		return nil, d.startErr
	}
	if update != nil {
		if err := update(); err != nil {
			return nil, err
		}
	}
	return d.anim, nil
}

func (d *fakeDriver) SetTransitionStyle(name string, style TransitionStyle) {
	d.styles[name] = style
}

func (d *fakeDriver) RemoveTransitionStyle(name string) {
	d.removed = append(d.removed, name)
	delete(d.styles, name)
}

func TestViewTransitionFallbackWithoutDriver(t *testing.T) {
	e, _, _ := newTestEngine()
	defer e.Destroy()

	ran := false
	err := e.StartViewTransition(context.Background(), TransitionConfig{
		Update: func() error {
			ran = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("StartViewTransition: %v", err)
	}
	if !ran {
		t.Fatal("fallback did not invoke the update callback")
	}
}

func TestViewTransitionFallbackWithoutCallback(t *testing.T) {
	e, _, _ := newTestEngine()
	defer e.Destroy()

	if err := e.StartViewTransition(context.Background(), TransitionConfig{}); err != nil {
		t.Fatalf("empty transition on driverless engine: %v", err)
	}
}

func TestViewTransitionFallbackPropagatesUpdateError(t *testing.T) {
	e, _, _ := newTestEngine()
	defer e.Destroy()

	boom := errors.New("boom")
	err := e.StartViewTransition(context.Background(), TransitionConfig{
		Update: func() error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestViewTransitionInstallsAndRemovesNamedStyle(t *testing.T) {
	driver := newFakeDriver()
	driver.anim.finished <- nil
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})
	defer e.Destroy()

	err := e.StartViewTransition(context.Background(), TransitionConfig{
		Name:     "fade",
		Duration: 300 * time.Millisecond,
		Easing:   "ease-out",
	})
	if err != nil {
		t.Fatalf("StartViewTransition: %v", err)
	}
	if len(driver.styles) != 0 {
		t.Fatalf("style entries left behind: %v", driver.styles)
	}
	if len(driver.removed) != 1 || driver.removed[0] != "fade" {
		t.Fatalf("removed = %v, want [fade]", driver.removed)
	}
}

func TestViewTransitionRepeatedCallsDoNotAccumulateStyles(t *testing.T) {
	driver := newFakeDriver()
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})
	defer e.Destroy()

	for i := 0; i < 3; i++ {
		driver.anim = &fakeAnimation{finished: make(chan error, 1)}
		driver.anim.finished <- nil
		if err := e.StartViewTransition(context.Background(), TransitionConfig{Name: "slide"}); err != nil {
			t.Fatalf("transition %d: %v", i, err)
		}
	}
	if len(driver.styles) != 0 {
		t.Fatalf("style entries accumulated: %v", driver.styles)
	}
}

func TestViewTransitionPropagatesAnimationError(t *testing.T) {
	driver := newFakeDriver()
	failed := errors.New("transition aborted")
	driver.anim.finished <- failed
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})
	defer e.Destroy()

	err := e.StartViewTransition(context.Background(), TransitionConfig{Name: "fade"})
	if !errors.Is(err, failed) {
		t.Fatalf("error = %v, want %v", err, failed)
	}
	// The failed run must still clean up its style node.
	if len(driver.styles) != 0 {
		t.Fatalf("style entries left behind after failure: %v", driver.styles)
	}
}

func TestViewTransitionPropagatesStartError(t *testing.T) {
	driver := newFakeDriver()
	driver.startErr = errors.New("capability refused")
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})
	defer e.Destroy()

	err := e.StartViewTransition(context.Background(), TransitionConfig{Name: "fade"})
	if !errors.Is(err, driver.startErr) {
		t.Fatalf("error = %v, want %v", err, driver.startErr)
	}
	if len(driver.styles) != 0 {
		t.Fatalf("style entries left behind: %v", driver.styles)
	}
}

func TestViewTransitionContextCancelAbandonsAnimation(t *testing.T) {
	driver := newFakeDriver() // finished never fed
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})
	defer e.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.StartViewTransition(ctx, TransitionConfig{Name: "fade"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if !driver.anim.cancelled {
		t.Fatal("animation was not cancelled")
	}
}

func TestDestroySweepsPendingTransitionStyles(t *testing.T) {
	driver := newFakeDriver()
	sched := &manualScheduler{}
	e := New(Config{Scheduler: sched, Driver: driver})

	done := make(chan error, 1)
	go func() {
		done <- e.StartViewTransition(context.Background(), TransitionConfig{Name: "fade"})
	}()

	// Wait for the style to be installed, then tear the engine down
	// while the transition is still pending.
	deadline := time.After(2 * time.Second)
	for {
		e.mu.Lock()
		installed := len(e.styles) == 1
		e.mu.Unlock()
		if installed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("style never installed")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	e.Destroy()
	if len(driver.styles) != 0 {
		t.Fatalf("Destroy left style entries: %v", driver.styles)
	}

	driver.anim.finished <- nil
	if err := <-done; err != nil {
		t.Fatalf("transition returned %v", err)
	}
}
