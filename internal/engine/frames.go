package engine

import "time"

// DefaultFrameRate is the tick rate of the timer-backed scheduler.
const DefaultFrameRate = 60

// Scheduler hands out one-shot frame callbacks, requestAnimationFrame
// style: the loop asks for the next frame only while it has live work,
// so an idle engine schedules nothing. Tests inject manual schedulers
// to drive frames by hand and count requests.
type Scheduler interface {
	// Request schedules fn to run once on the next frame and returns a
	// cancel function. Cancel after the frame has fired is a no-op.
	Request(fn func(now time.Time)) (cancel func())
}

// timerScheduler is the default Scheduler, pacing frames with one-shot
// timers the way tea.Tick paces a Bubbletea program.
type timerScheduler struct {
	interval time.Duration
}

func newTimerScheduler(fps int) *timerScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &timerScheduler{interval: time.Second / time.Duration(fps)}
}

func (s *timerScheduler) Request(fn func(now time.Time)) func() {
	timer := time.AfterFunc(s.interval, func() {
		fn(time.Now())
	})
	return func() { timer.Stop() }
}
