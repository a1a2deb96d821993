package spline

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrBadRange       = errors.New("invalid spline range")
	ErrOutOfRange     = errors.New("node value outside spline range")
	ErrNodeOrder      = errors.New("node time before previous node")
	ErrNotInitialized = errors.New("spline not initialized")
	ErrFinalized      = errors.New("spline already finalized")
	ErrNoNodes        = errors.New("spline has no nodes")
)

// quantMax is the largest quantised node value.
const quantMax = math.MaxUint16

// Node is a single key point of a Compact spline, with its value dequantised.
type Node struct {
	X    float64 `json:"x"` // seconds
	Y    float64 `json:"y"`
	DyDx float64 `json:"dydx"`
}

// Compact is a one-dimensional Hermite spline whose node values are stored as
// 16-bit fractions of a fixed Range.
//
// Node times are quantised to whole multiples of the granularity. Nodes are
// appended with AddNode in non-decreasing time order; a node that lands on
// the same quantised time as the previous one replaces it. Finalize fits the
// evaluator; after that the spline is read-only and Value/Derivative may be
// called from any goroutine.
type Compact struct {
	r           Range
	granularity float64 // node time quantum, seconds
	xs          []float64
	ys          []uint16
	dydxs       []float64

	finalized bool
	fit       *interp.PiecewiseCubic // nil for a single-node spline
}

// Init resets c to an empty spline over r with the given time granularity.
func (c *Compact) Init(r Range, granularity float64) error {
	if err := r.validate(); err != nil {
		return err
	}
	if !(granularity > 0) {
		return fmt.Errorf("granularity %g must be positive", granularity)
	}
	*c = Compact{r: r, granularity: granularity}
	return nil
}

// AddNode appends a node at time x with value y and slope dydx. x is
// rounded to the nearest multiple of the granularity; if that equals the
// previous node's time the previous node is replaced.
func (c *Compact) AddNode(x, y, dydx float64) error {
	if c.granularity == 0 {
		return ErrNotInitialized
	}
	if c.finalized {
		return ErrFinalized
	}
	if !c.r.Contains(y) {
		return fmt.Errorf("%w: %g not in %s", ErrOutOfRange, y, c.r)
	}
	step := math.Round(x / c.granularity)
	if n := len(c.xs); n > 0 {
		prev := math.Round(c.xs[n-1] / c.granularity)
		switch {
		case step < prev:
			return fmt.Errorf("%w: %g precedes %g", ErrNodeOrder, x, c.xs[n-1])
		case step == prev:
			c.ys[n-1] = c.quantize(y)
			c.dydxs[n-1] = dydx
			return nil
		}
	}
	c.xs = append(c.xs, step*c.granularity)
	c.ys = append(c.ys, c.quantize(y))
	c.dydxs = append(c.dydxs, dydx)
	return nil
}

// Finalize fits the Hermite evaluator to the nodes added so far.
func (c *Compact) Finalize() error {
	if c.granularity == 0 {
		return ErrNotInitialized
	}
	if c.finalized {
		return ErrFinalized
	}
	if len(c.xs) == 0 {
		return ErrNoNodes
	}
	if len(c.xs) > 1 {
		ys := make([]float64, len(c.ys))
		for i, q := range c.ys {
			ys[i] = c.dequantize(q)
		}
		c.fit = &interp.PiecewiseCubic{}
		c.fit.FitWithDerivatives(c.xs, ys, c.dydxs)
	}
	c.finalized = true
	return nil
}

// Value evaluates the spline at x. Outside the node times the end values are
// held. Returns NaN before Finalize.
func (c *Compact) Value(x float64) float64 {
	switch {
	case !c.finalized:
		return math.NaN()
	case c.fit == nil:
		return c.dequantize(c.ys[0])
	}
	return c.fit.Predict(x)
}

// Derivative evaluates the spline's slope at x. Outside the node times the
// value is held, so the slope there is 0. Returns NaN before Finalize.
func (c *Compact) Derivative(x float64) float64 {
	switch {
	case !c.finalized:
		return math.NaN()
	case c.fit == nil, x < c.StartX(), x > c.EndX():
		return 0
	}
	return c.fit.PredictDerivative(x)
}

// Range returns the value range fixed by Init.
func (c *Compact) Range() Range { return c.r }

// Granularity returns the node time quantum fixed by Init.
func (c *Compact) Granularity() float64 { return c.granularity }

// NumNodes returns the number of nodes added.
func (c *Compact) NumNodes() int { return len(c.xs) }

// StartX returns the time of the first node, or 0 when empty.
func (c *Compact) StartX() float64 {
	if len(c.xs) == 0 {
		return 0
	}
	return c.xs[0]
}

// EndX returns the time of the last node, or 0 when empty.
func (c *Compact) EndX() float64 {
	if len(c.xs) == 0 {
		return 0
	}
	return c.xs[len(c.xs)-1]
}

// Nodes returns a copy of the nodes with values dequantised.
func (c *Compact) Nodes() []Node {
	nodes := make([]Node, len(c.xs))
	for i := range c.xs {
		nodes[i] = Node{X: c.xs[i], Y: c.dequantize(c.ys[i]), DyDx: c.dydxs[i]}
	}
	return nodes
}

func (c *Compact) quantize(y float64) uint16 {
	f := (y - c.r.Start) / c.r.Width()
	return uint16(math.Round(f * quantMax))
}

func (c *Compact) dequantize(q uint16) float64 {
	return c.r.Start + float64(q)/quantMax*c.r.Width()
}
