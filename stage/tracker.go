// Package stage guards staged construction. A Tracker holds the stage a
// builder has reached and panics if a step is invoked out of order.
package stage

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// OrderError is the panic value raised by a Tracker on an ordering violation.
type OrderError struct {
	Current string
	Target  string

	// Missing is true if Target is a prerequisite stage that was never reached,
	// false if Target was requested at or before the Current stage.
	Missing bool
}

func (e *OrderError) Error() string {
	if e.Missing {
		return fmt.Sprintf("stage %s is required but only %s was reached", e.Target, e.Current)
	}

	return fmt.Sprintf("stage %s requested after stage %s", e.Target, e.Current)
}

// Tracker holds a single stage out of a closed, totally ordered set of stages.
// Stages only ever move forward.
type Tracker[S constraints.Integer] struct {
	current S
}

func New[S constraints.Integer](initial S) *Tracker[S] {
	return &Tracker[S]{current: initial}
}

func (t *Tracker[S]) Current() S {
	return t.current
}

// Check panics with an *OrderError unless target is strictly after the current stage.
func (t *Tracker[S]) Check(target S) {
	t.CheckOr(target, func(current, target S) {
		panic(orderError(current, target, false))
	})
}

// CheckOr calls onViolation instead of panicking if target is not strictly
// after the current stage.
func (t *Tracker[S]) CheckOr(target S, onViolation func(current, target S)) {
	if target <= t.current {
		onViolation(t.current, target)
	}
}

// Advance checks the order and moves the tracker to target.
func (t *Tracker[S]) Advance(target S) {
	t.Check(target)
	t.current = target
}

// AdvanceOr reports a violation to onViolation and moves to target regardless.
func (t *Tracker[S]) AdvanceOr(target S, onViolation func(current, target S)) {
	t.CheckOr(target, onViolation)
	t.current = target
}

// Require panics with an *OrderError if the stage was not reached yet.
func (t *Tracker[S]) Require(stage S) {
	if t.current < stage {
		panic(orderError(t.current, stage, true))
	}
}

func orderError[S constraints.Integer](current, target S, missing bool) *OrderError {
	return &OrderError{
		Current: fmt.Sprint(current),
		Target:  fmt.Sprint(target),
		Missing: missing,
	}
}
