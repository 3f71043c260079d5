package stage

import (
	"errors"
	"testing"
)

type testStage int

const (
	stageFirst testStage = iota
	stageSecond
	stageThird
	stageLast
)

func (s testStage) String() string {
	return [...]string{"First", "Second", "Third", "Last"}[s]
}

func catch(fn func()) (err *OrderError) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			err, ok = r.(*OrderError)
			if !ok {
				panic(r)
			}
		}
	}()

	fn()
	return nil
}

func TestAdvanceStrictlyIncreasing(t *testing.T) {
	tests := []struct {
		name    string
		targets []testStage
		fails   int
	}{
		{"all stages in order", []testStage{stageSecond, stageThird, stageLast}, -1},
		{"skipping is allowed", []testStage{stageThird, stageLast}, -1},
		{"same stage twice", []testStage{stageSecond, stageSecond}, 1},
		{"going backwards", []testStage{stageThird, stageSecond}, 1},
		{"initial stage again", []testStage{stageFirst}, 0},
		{"after the last stage", []testStage{stageLast, stageThird}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := New(stageFirst)

			for idx, target := range tt.targets {
				err := catch(func() { tracker.Advance(target) })

				if idx == tt.fails {
					if err == nil {
						t.Fatalf("advance to %s did not fail", target)
					}
					return
				}

				if err != nil {
					t.Fatalf("advance to %s failed: %s", target, err)
				}

				if tracker.Current() != target {
					t.Fatalf("current stage is %s, expected %s", tracker.Current(), target)
				}
			}
		})
	}
}

func TestCheckDoesNotAdvance(t *testing.T) {
	tracker := New(stageSecond)
	tracker.Check(stageLast)

	if tracker.Current() != stageSecond {
		t.Fatalf("check moved the tracker to %s", tracker.Current())
	}

	err := catch(func() { tracker.Check(stageFirst) })
	if err == nil {
		t.Fatal("check accepted an earlier stage")
	}

	if err.Current != "Second" || err.Target != "First" || err.Missing {
		t.Fatalf("unexpected error: %#v", err)
	}
}

func TestCheckOrCallsFallback(t *testing.T) {
	tracker := New(stageThird)

	var reported []testStage
	onViolation := func(current, target testStage) {
		reported = append(reported, current, target)
	}

	tracker.CheckOr(stageLast, onViolation)
	if len(reported) != 0 {
		t.Fatalf("fallback called for a valid stage: %v", reported)
	}

	tracker.CheckOr(stageSecond, onViolation)
	if len(reported) != 2 || reported[0] != stageThird || reported[1] != stageSecond {
		t.Fatalf("unexpected report: %v", reported)
	}

	if tracker.Current() != stageThird {
		t.Fatalf("CheckOr moved the tracker to %s", tracker.Current())
	}
}

func TestAdvanceOrMovesAnyway(t *testing.T) {
	tracker := New(stageThird)

	var called bool
	tracker.AdvanceOr(stageFirst, func(current, target testStage) { called = true })

	if !called {
		t.Fatal("fallback not called")
	}

	if tracker.Current() != stageFirst {
		t.Fatalf("current stage is %s", tracker.Current())
	}
}

func TestRequire(t *testing.T) {
	tracker := New(stageSecond)

	if err := catch(func() { tracker.Require(stageFirst) }); err != nil {
		t.Fatalf("earlier stage rejected: %s", err)
	}

	if err := catch(func() { tracker.Require(stageSecond) }); err != nil {
		t.Fatalf("current stage rejected: %s", err)
	}

	err := catch(func() { tracker.Require(stageThird) })
	if err == nil {
		t.Fatal("missing stage accepted")
	}

	if !err.Missing {
		t.Fatalf("error not flagged as missing: %#v", err)
	}

	var orderErr *OrderError
	if !errors.As(error(err), &orderErr) {
		t.Fatal("OrderError does not implement error")
	}
}

func TestOrderErrorMessage(t *testing.T) {
	err := &OrderError{Current: "Adapter", Target: "Surface"}
	if got := err.Error(); got != "stage Surface requested after stage Adapter" {
		t.Fatalf("unexpected message %q", got)
	}

	err = &OrderError{Current: "Surface", Target: "Adapter", Missing: true}
	if got := err.Error(); got != "stage Adapter is required but only Surface was reached" {
		t.Fatalf("unexpected message %q", got)
	}
}
