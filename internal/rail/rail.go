// Package rail builds queryable constant-speed 3D paths from baked waypoint
// definitions and caches them by identifier.
//
// A Rail is immutable once New returns and may be read from any goroutine.
// A Manager owns the Rails it builds; see Manager for the lifetime rules of
// the *Rail values it hands out.
package rail

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cxd309/rail-engine/internal/curve"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/spline"
)

// RangeMargin is the fraction of an axis's extent added on each side of its
// spline value range.
const RangeMargin = 0.1

// Rail is a built path: one compact spline per axis, all keyed at the
// timeline produced by the curve builder.
type Rail struct {
	name     string
	ordering int
	splines  spline.Set
}

// New builds a Rail from def. granularity is the node time quantum in
// seconds; waypoints closer together than that share one spline node.
// On error the returned Rail is nil.
func New(def *raildef.Definition, granularity float64, b curve.Builder) (*Rail, error) {
	if len(def.Waypoints) == 0 {
		return nil, fmt.Errorf("rail %q: %w", def.Name, raildef.ErrNoWaypoints)
	}
	positions := def.Waypoints
	n := len(positions)

	tl, err := b.Build(positions, def.TotalTime, def.ReliableDistance)
	if err != nil {
		return nil, fmt.Errorf("rail %q: building timeline: %w", def.Name, err)
	}
	if err := tl.Validate(n); err != nil {
		return nil, fmt.Errorf("rail %q: %w", def.Name, err)
	}

	r := &Rail{name: def.Name, ordering: def.Ordering}

	// Per-axis extents set each spline's quantisation range.
	column := make([]float64, n)
	for i := range r.splines {
		axis := spline.Axis(i)
		for k, p := range positions {
			column[k] = axis.Component(p)
		}
		extent := spline.Range{Start: floats.Min(column), End: floats.Max(column)}
		valueRange := extent.Lengthen(RangeMargin)
		if !valueRange.StrictlyContains(extent.Start) || !valueRange.StrictlyContains(extent.End) {
			return nil, fmt.Errorf("rail %q: axis %s: %w: %s does not strictly contain %s",
				def.Name, axis, spline.ErrBadRange, valueRange, extent)
		}
		if err := r.splines[i].Init(valueRange, granularity); err != nil {
			return nil, fmt.Errorf("rail %q: axis %s: %w", def.Name, axis, err)
		}
	}

	// Every axis is keyed at the same times.
	for k := range positions {
		for i := range r.splines {
			axis := spline.Axis(i)
			err := r.splines[i].AddNode(tl.Times[k], axis.Component(positions[k]), axis.Component(tl.Derivatives[k]))
			if err != nil {
				return nil, fmt.Errorf("rail %q: waypoint %d axis %s: %w", def.Name, k, axis, err)
			}
		}
	}

	if err := r.splines.Finalize(); err != nil {
		return nil, fmt.Errorf("rail %q: %w", def.Name, err)
	}
	return r, nil
}

// Name returns the rail name from its definition.
func (r *Rail) Name() string { return r.name }

// Ordering returns the ordering value from its definition.
func (r *Rail) Ordering() int { return r.ordering }

// Position returns the point on the rail at time t (seconds).
func (r *Rail) Position(t float64) r3.Vec { return r.splines.Position(t) }

// Velocity returns the rail's derivative at time t. Outside
// [StartTime, EndTime] the position is held and the velocity is zero.
func (r *Rail) Velocity(t float64) r3.Vec { return r.splines.Velocity(t) }

// PositionAndVelocity evaluates both at time t.
func (r *Rail) PositionAndVelocity(t float64) (pos, vel r3.Vec) {
	return r.splines.Position(t), r.splines.Velocity(t)
}

// StartTime returns the time of the first waypoint.
func (r *Rail) StartTime() float64 { return r.splines[spline.X].StartX() }

// EndTime returns the time of the last waypoint.
func (r *Rail) EndTime() float64 { return r.splines[spline.X].EndX() }

// Duration returns EndTime - StartTime in seconds.
func (r *Rail) Duration() float64 { return r.EndTime() - r.StartTime() }

// NumNodes returns the number of spline nodes. It is less than the number of
// waypoints when some fell within one granularity step of each other.
func (r *Rail) NumNodes() int { return r.splines[spline.X].NumNodes() }

// Spline returns a read-only view of the spline for axis a.
func (r *Rail) Spline(a spline.Axis) SplineView { return SplineView{c: &r.splines[a]} }

// Length approximates the arc length by summing chords between samples+1
// evenly spaced evaluations.
func (r *Rail) Length(samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	start, dur := r.StartTime(), r.Duration()
	prev := r.Position(start)
	var total float64
	for i := 1; i <= samples; i++ {
		p := r.Position(start + dur*float64(i)/float64(samples))
		total += r3.Norm(r3.Sub(p, prev))
		prev = p
	}
	return total
}

// Bounds returns the per-axis value ranges the splines were initialised with.
func (r *Rail) Bounds() (lo, hi r3.Vec) {
	x, y, z := r.splines[spline.X].Range(), r.splines[spline.Y].Range(), r.splines[spline.Z].Range()
	return r3.Vec{X: x.Start, Y: y.Start, Z: z.Start}, r3.Vec{X: x.End, Y: y.End, Z: z.End}
}

// SplineView exposes the read-only parts of a rail's axis spline.
type SplineView struct {
	c *spline.Compact
}

func (v SplineView) Range() spline.Range     { return v.c.Range() }
func (v SplineView) Granularity() float64    { return v.c.Granularity() }
func (v SplineView) NumNodes() int           { return v.c.NumNodes() }
func (v SplineView) Nodes() []spline.Node    { return v.c.Nodes() }
func (v SplineView) Value(t float64) float64 { return v.c.Value(t) }

// Derivative evaluates the axis slope at t.
func (v SplineView) Derivative(t float64) float64 { return v.c.Derivative(t) }

// clampTime limits t to the rail's time span.
func (r *Rail) clampTime(t float64) float64 {
	return math.Max(r.StartTime(), math.Min(t, r.EndTime()))
}

// Sample evaluates the rail at n evenly spaced times from start to end
// inclusive. n below 2 is treated as 2.
func (r *Rail) Sample(n int) []Sample {
	if n < 2 {
		n = 2
	}
	out := make([]Sample, n)
	for i := range out {
		t := r.clampTime(r.StartTime() + r.Duration()*float64(i)/float64(n-1))
		pos, vel := r.PositionAndVelocity(t)
		out[i] = Sample{Time: t, Position: pos, Velocity: vel}
	}
	return out
}

// Sample is one evaluation of a rail.
type Sample struct {
	Time     float64 `json:"t"` // seconds
	Position r3.Vec  `json:"position"`
	Velocity r3.Vec  `json:"velocity"`
}
