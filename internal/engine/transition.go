package engine

import (
	"context"
	"log/slog"
	"time"
)

// TransitionConfig describes one view transition. All fields are
// optional; an empty config on a driverless engine resolves immediately.
type TransitionConfig struct {
	// Name scopes a transition style for the duration of the run. While
	// the transition is pending the driver holds exactly one style entry
	// under this name; it is removed when the transition finishes.
	Name string

	Duration time.Duration
	Easing   string

	// Update applies the state change the transition animates between.
	// On platforms without the capability it runs synchronously and its
	// result is the transition's result.
	Update func() error
}

// TransitionStyle is the timing information installed under a
// transition's name while it runs.
type TransitionStyle struct {
	Duration time.Duration
	Easing   string
}

// Animation is a running platform transition: a completion signal and a
// way to abandon it.
type Animation interface {
	// Finished yields the transition outcome exactly once.
	Finished() <-chan error
	Cancel()
}

// Driver is the narrow platform capability behind view transitions.
// The core engine never touches platform animation objects directly;
// one thin adapter per platform implements this.
type Driver interface {
	// Start snapshots the old state, applies update and animates to the
	// new one.
	Start(update func() error) (Animation, error)

	SetTransitionStyle(name string, style TransitionStyle)
	RemoveTransitionStyle(name string)
}

// StartViewTransition animates a state change through the platform
// capability. Without a driver, Update runs synchronously and its
// error, if any, is returned. Driver and
// animation failures propagate to the caller unmodified, since the
// caller must know the transition did not complete.
func (e *Engine) StartViewTransition(ctx context.Context, cfg TransitionConfig) error {
	if e.driver == nil {
		e.logger.Debug("view transition fallback", slog.String("name", cfg.Name))
		if cfg.Update != nil {
			return cfg.Update()
		}
		return nil
	}

	if cfg.Name != "" {
		e.installStyle(cfg.Name, TransitionStyle{Duration: cfg.Duration, Easing: cfg.Easing})
		defer e.clearStyle(cfg.Name)
	}

	anim, err := e.driver.Start(cfg.Update)
	if err != nil {
		return err
	}

	select {
	case err := <-anim.Finished():
		return err
	case <-ctx.Done():
		anim.Cancel()
		return ctx.Err()
	}
}

func (e *Engine) installStyle(name string, style TransitionStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[name] = struct{}{}
	e.driver.SetTransitionStyle(name, style)
}

// clearStyle removes the style entry installed for name. The existence
// check keeps cleanup from racing a Destroy that already swept it, and
// a cleanup miss never masks the transition outcome.
func (e *Engine) clearStyle(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.styles[name]; !ok {
		return
	}
	delete(e.styles, name)
	e.driver.RemoveTransitionStyle(name)
}
