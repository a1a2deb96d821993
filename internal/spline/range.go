// Package spline provides the compact one-dimensional Hermite curves that back a
// rail, and the three-axis Set that composes them into 3D positions.
//
// A Compact spline stores its node values quantised to 16 bits inside a fixed
// value Range, so the range must be chosen before any node is added. Evaluation
// is delegated to gonum's piecewise cubic Hermite interpolator.
package spline

import (
	"fmt"
	"math"
)

// MinRangeMargin is the half-width applied by Lengthen when the range has zero
// width (every observed value identical), so a range never collapses to a point.
const MinRangeMargin = 1.0

// Range is a closed interval of axis values.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Width returns End - Start.
func (r Range) Width() float64 { return r.End - r.Start }

// Lengthen returns r widened by fraction*Width on each side.
// A zero-width range is widened by MinRangeMargin on each side instead.
// Where the margin is lost to rounding each end still moves out by at least
// one representable value.
func (r Range) Lengthen(fraction float64) Range {
	margin := fraction * r.Width()
	if r.Width() == 0 {
		margin = MinRangeMargin
	}
	out := Range{Start: r.Start - margin, End: r.End + margin}
	if out.Start >= r.Start {
		out.Start = math.Nextafter(r.Start, math.Inf(-1))
	}
	if out.End <= r.End {
		out.End = math.Nextafter(r.End, math.Inf(1))
	}
	return out
}

// Contains reports whether v lies in [Start, End].
func (r Range) Contains(v float64) bool { return v >= r.Start && v <= r.End }

// StrictlyContains reports whether v lies in (Start, End).
func (r Range) StrictlyContains(v float64) bool { return v > r.Start && v < r.End }

// validate checks that r is finite and has positive width.
func (r Range) validate() error {
	if math.IsNaN(r.Start) || math.IsNaN(r.End) || math.IsInf(r.Start, 0) || math.IsInf(r.End, 0) {
		return fmt.Errorf("%w: [%g, %g] is not finite", ErrBadRange, r.Start, r.End)
	}
	if r.Width() <= 0 {
		return fmt.Errorf("%w: [%g, %g] has no width", ErrBadRange, r.Start, r.End)
	}
	return nil
}

func (r Range) String() string { return fmt.Sprintf("[%g, %g]", r.Start, r.End) }
