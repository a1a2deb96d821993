// Package curve turns an ordered list of 3D waypoints into a constant-speed
// timeline: a time stamp and a tangent (derivative) vector for every waypoint.
//
// The Builder interface is the contract the rail package depends on. ConstSpeed
// is the default chord-length implementation; callers may substitute any other
// fitting routine.
package curve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Unset marks an absent optional hint (total time or reliable distance).
const Unset = -1.0

// ErrDegenerateInput is returned when the waypoints cannot support a
// constant-speed parameterisation.
var ErrDegenerateInput = errors.New("degenerate rail input")

// Timeline is the per-waypoint output of a Builder. Times and Derivatives have
// one entry per waypoint; Times strictly increase from 0.
type Timeline struct {
	Times       []float64 `json:"times"`       // seconds
	Derivatives []r3.Vec  `json:"derivatives"` // units per second
}

// Validate checks that tl is well formed for n waypoints.
func (tl Timeline) Validate(n int) error {
	if len(tl.Times) != n || len(tl.Derivatives) != n {
		return fmt.Errorf("timeline has %d times and %d derivatives for %d waypoints",
			len(tl.Times), len(tl.Derivatives), n)
	}
	for i := 1; i < n; i++ {
		if !(tl.Times[i] > tl.Times[i-1]) {
			return fmt.Errorf("timeline times not strictly increasing at %d: %g after %g",
				i, tl.Times[i], tl.Times[i-1])
		}
	}
	return nil
}

// Builder computes a Timeline from waypoint positions. totalTime and
// reliableDistance are hints; Unset (or any negative value) asks the builder
// to use its own default.
type Builder interface {
	Build(positions []r3.Vec, totalTime, reliableDistance float64) (Timeline, error)
}

// BuilderFunc adapts an ordinary function to the Builder interface.
type BuilderFunc func(positions []r3.Vec, totalTime, reliableDistance float64) (Timeline, error)

// Build calls f.
func (f BuilderFunc) Build(positions []r3.Vec, totalTime, reliableDistance float64) (Timeline, error) {
	return f(positions, totalTime, reliableDistance)
}

// isSet reports whether an optional hint carries a value.
func isSet(v float64) bool { return v >= 0 && !math.IsNaN(v) }
