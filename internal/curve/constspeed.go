package curve

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultSpeed is used when no total time is given, in units per second.
	DefaultSpeed = 1.0
	// DefaultReliableDistance of zero estimates tangents from immediate neighbours.
	DefaultReliableDistance = 0.0
)

// ConstSpeed builds timelines that traverse the polyline through the
// waypoints at a single uniform speed.
//
// Times are proportional to cumulative chord length. The tangent at a
// waypoint points from the nearest waypoint at least the reliable distance
// behind it to the nearest waypoint at least the reliable distance ahead,
// clamped to the ends of the rail, and has magnitude equal to the speed.
type ConstSpeed struct {
	// DefaultSpeed replaces an unset total time. Zero means DefaultSpeed.
	DefaultSpeed float64 `json:"default_speed" yaml:"default_speed"`
	// DefaultReliableDistance replaces an unset reliable distance.
	DefaultReliableDistance float64 `json:"reliable_distance" yaml:"reliable_distance"`
}

// NewConstSpeed returns a ConstSpeed builder with package defaults.
func NewConstSpeed() ConstSpeed {
	return ConstSpeed{DefaultSpeed: DefaultSpeed, DefaultReliableDistance: DefaultReliableDistance}
}

// Build implements Builder.
func (c ConstSpeed) Build(positions []r3.Vec, totalTime, reliableDistance float64) (Timeline, error) {
	n := len(positions)
	if n < 2 {
		return Timeline{}, fmt.Errorf("%w: %d waypoints, need at least 2", ErrDegenerateInput, n)
	}

	// Cumulative chord length at each waypoint.
	cumulative := make([]float64, n)
	for i := 1; i < n; i++ {
		seg := r3.Norm(r3.Sub(positions[i], positions[i-1]))
		if seg == 0 {
			return Timeline{}, fmt.Errorf("%w: waypoints %d and %d coincide", ErrDegenerateInput, i-1, i)
		}
		cumulative[i] = cumulative[i-1] + seg
	}
	length := cumulative[n-1]

	speed := c.DefaultSpeed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	if isSet(totalTime) {
		if totalTime == 0 {
			return Timeline{}, fmt.Errorf("%w: total time is zero", ErrDegenerateInput)
		}
		speed = length / totalTime
	}

	reliable := c.DefaultReliableDistance
	if isSet(reliableDistance) {
		reliable = reliableDistance
	}

	tl := Timeline{
		Times:       make([]float64, n),
		Derivatives: make([]r3.Vec, n),
	}
	for i := range positions {
		tl.Times[i] = cumulative[i] / speed

		behind := i
		for behind > 0 && cumulative[i]-cumulative[behind] < reliable {
			behind--
		}
		if behind == i && i > 0 {
			behind = i - 1
		}
		ahead := i
		for ahead < n-1 && cumulative[ahead]-cumulative[i] < reliable {
			ahead++
		}
		if ahead == i && i < n-1 {
			ahead = i + 1
		}

		chord := r3.Sub(positions[ahead], positions[behind])
		if r3.Norm(chord) == 0 {
			// Rail doubles back on itself around i; fall back to the outgoing segment.
			next := min(i+1, n-1)
			prev := next - 1
			chord = r3.Sub(positions[next], positions[prev])
		}
		tl.Derivatives[i] = r3.Scale(speed, r3.Unit(chord))
	}
	return tl, nil
}
