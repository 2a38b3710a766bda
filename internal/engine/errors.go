package engine

import "fmt"

// StepConfigError reports an invalid motion config found while
// validating timeline steps at creation time.
type StepConfigError struct {
	Index  int
	Target string
	Err    error
}

func (e *StepConfigError) Error() string {
	return fmt.Sprintf("engine: timeline step %d (target %q): %v", e.Index, e.Target, e.Err)
}

func (e *StepConfigError) Unwrap() error {
	return e.Err
}
