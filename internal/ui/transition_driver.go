package ui

import (
	"sync"
	"time"

	"github.com/olivier-w/kinema/internal/engine"
)

const defaultFadeDuration = 300 * time.Millisecond

// FadeDriver is the terminal adapter for the engine's view-transition
// capability: it applies the update immediately and reports completion
// once the configured fade window has passed. The core engine never
// sees these timers, only the Animation handle.
type FadeDriver struct {
	mu     sync.Mutex
	styles map[string]engine.TransitionStyle
	last   engine.TransitionStyle
}

func NewFadeDriver() *FadeDriver {
	return &FadeDriver{styles: make(map[string]engine.TransitionStyle)}
}

func (d *FadeDriver) Start(update func() error) (engine.Animation, error) {
	if update != nil {
		if err := update(); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	dur := d.last.Duration
	d.mu.Unlock()
	if dur <= 0 {
		dur = defaultFadeDuration
	}

	anim := &fadeAnimation{finished: make(chan error, 1)}
	anim.timer = time.AfterFunc(dur, func() {
		anim.finished <- nil
	})
	return anim, nil
}

func (d *FadeDriver) SetTransitionStyle(name string, style engine.TransitionStyle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styles[name] = style
	d.last = style
}

func (d *FadeDriver) RemoveTransitionStyle(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.styles, name)
}

// StyleCount reports how many scoped styles are currently installed.
func (d *FadeDriver) StyleCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.styles)
}

type fadeAnimation struct {
	finished chan error
	timer    *time.Timer
}

func (a *fadeAnimation) Finished() <-chan error { return a.finished }

func (a *fadeAnimation) Cancel() {
	a.timer.Stop()
}
