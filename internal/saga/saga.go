// Package saga runs ordered steps and undoes completed ones when a later
// step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
)

// Step is one forward action with an optional compensation. Compensate is
// only called when Do returned nil.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Error reports the step that failed and any compensation failures.
type Error struct {
	Step          string
	Err           error
	Compensations []error
}

func (e *Error) Error() string {
	if len(e.Compensations) == 0 {
		return fmt.Sprintf("step %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %s: %v (compensation: %v)", e.Step, e.Err, errors.Join(e.Compensations...))
}

func (e *Error) Unwrap() error { return e.Err }

// Run executes steps in order. When a step fails, compensations of the
// steps that already completed run in reverse order with compensateCtx,
// which should outlive a cancelled request.
func Run(ctx, compensateCtx context.Context, steps ...Step) error {
	for i, step := range steps {
		if err := step.Do(ctx); err != nil {
			return &Error{Step: step.Name, Err: err, Compensations: compensate(compensateCtx, steps[:i])}
		}
	}
	return nil
}

func compensate(ctx context.Context, done []Step) []error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		if done[i].Compensate == nil {
			continue
		}
		if err := done[i].Compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", done[i].Name, err))
		}
	}
	return errs
}
