package spline

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis indexes a spatial dimension.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Dimensions is the number of axes in a Set.
const Dimensions = 3

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Component returns the a component of v.
func (a Axis) Component(v r3.Vec) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	default:
		return v.Z
	}
}

// Set holds one Compact spline per axis. All three are evaluated independently
// and composed into a vector.
type Set [Dimensions]Compact

// Finalize finalizes every axis.
func (s *Set) Finalize() error {
	for i := range s {
		if err := s[i].Finalize(); err != nil {
			return fmt.Errorf("axis %s: %w", Axis(i), err)
		}
	}
	return nil
}

// Position returns the point on the set at time t.
func (s *Set) Position(t float64) r3.Vec {
	return r3.Vec{X: s[X].Value(t), Y: s[Y].Value(t), Z: s[Z].Value(t)}
}

// Velocity returns the derivative of Position at time t.
func (s *Set) Velocity(t float64) r3.Vec {
	return r3.Vec{X: s[X].Derivative(t), Y: s[Y].Derivative(t), Z: s[Z].Derivative(t)}
}
