// Package swipe models the swipe-to-dismiss gesture of a single list row.
//
// A row starts Idle. A drag moves it to Dragging and tracks the horizontal
// offset. Releasing past Threshold to the left moves it to Dismissing,
// anything else snaps it back to Idle. Finish moves a Dismissing row to
// Removed once its exit animation has run; only then is the note removed
// from the list.
package swipe

import (
	"errors"
	"fmt"
	"time"
)

// Threshold is the leftward displacement, in logical units, a row must be
// released beyond to be dismissed.
const Threshold = 120.0

// Animation timings.
const (
	AppearDuration  = 750 * time.Millisecond
	DismissDuration = 500 * time.Millisecond
	ReturnDuration  = 600 * time.Millisecond
)

var ErrInvalidTransition = errors.New("invalid swipe transition")

type State int

const (
	Idle State = iota
	Dragging
	Dismissing
	Removed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Dismissing:
		return "dismissing"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Row is the gesture state of one list row. The zero value is Idle.
type Row struct {
	state  State
	offset float64
}

func (r *Row) State() State     { return r.state }
func (r *Row) Offset() float64  { return r.offset }
func (r *Row) Settled() bool    { return r.state == Idle }
func (r *Row) Dismissing() bool { return r.state == Dismissing }

// Start begins a drag. Starting while already dragging is a no-op.
func (r *Row) Start() error {
	switch r.state {
	case Idle:
		r.state = Dragging
		r.offset = 0
		return nil
	case Dragging:
		return nil
	default:
		return fmt.Errorf("start from %s: %w", r.state, ErrInvalidTransition)
	}
}

// Move sets the current displacement of a dragging row.
func (r *Row) Move(dx float64) error {
	if r.state != Dragging {
		return fmt.Errorf("move from %s: %w", r.state, ErrInvalidTransition)
	}
	r.offset = dx
	return nil
}

// Release ends the drag and returns the resulting state.
func (r *Row) Release() (State, error) {
	if r.state != Dragging {
		return r.state, fmt.Errorf("release from %s: %w", r.state, ErrInvalidTransition)
	}
	if Beyond(r.offset) {
		r.state = Dismissing
	} else {
		r.state = Idle
		r.offset = 0
	}
	return r.state, nil
}

// Finish marks the exit animation of a dismissing row as done.
func (r *Row) Finish() error {
	if r.state != Dismissing {
		return fmt.Errorf("finish from %s: %w", r.state, ErrInvalidTransition)
	}
	r.state = Removed
	return nil
}

// Beyond reports whether a release at dx dismisses the row.
func Beyond(dx float64) bool {
	return dx < -Threshold
}

// Fade returns opacity and scale, both in [0,1], for a row elapsed into its
// dismiss animation.
func Fade(elapsed time.Duration) (opacity, scale float64) {
	p := Progress(elapsed, DismissDuration)
	return 1 - p, 1 - p
}

// Progress returns how far elapsed is into d, clamped to [0,1].
func Progress(elapsed, d time.Duration) float64 {
	if d <= 0 || elapsed >= d {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(d)
}
