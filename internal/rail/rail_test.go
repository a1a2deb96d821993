package rail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cxd309/rail-engine/internal/curve"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/spline"
)

// stubBuilder returns fixed times and derivatives and counts calls.
type stubBuilder struct {
	times       []float64
	derivatives []r3.Vec
	err         error

	calls         int
	lastTotal     float64
	lastReliable  float64
	lastPositions []r3.Vec
}

func (b *stubBuilder) Build(positions []r3.Vec, totalTime, reliableDistance float64) (curve.Timeline, error) {
	b.calls++
	b.lastPositions = positions
	b.lastTotal = totalTime
	b.lastReliable = reliableDistance
	if b.err != nil {
		return curve.Timeline{}, b.err
	}
	return curve.Timeline{Times: b.times, Derivatives: b.derivatives}, nil
}

func straightLine() *raildef.Definition {
	d := raildef.New("straight", r3.Vec{}, r3.Vec{X: 10})
	d.TotalTime = 10
	return d
}

func TestNew_StraightLine(t *testing.T) {
	t.Parallel()

	r, err := New(straightLine(), DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)

	assert.Equal(t, "straight", r.Name())
	assert.Equal(t, 2, r.NumNodes())
	assert.Equal(t, 0.0, r.StartTime())
	assert.Equal(t, 10.0, r.EndTime())
	assert.Equal(t, 10.0, r.Duration())

	for _, n := range r.Spline(spline.X).Nodes() {
		assert.InDelta(t, 1.0, n.DyDx, 1e-9, "x derivative at t=%g", n.X)
	}
	for _, a := range []spline.Axis{spline.Y, spline.Z} {
		rng := r.Spline(a).Range()
		assert.Equal(t, spline.Range{Start: -spline.MinRangeMargin, End: spline.MinRangeMargin}, rng, "axis %s", a)
		for _, n := range r.Spline(a).Nodes() {
			assert.Equal(t, 0.0, n.DyDx)
		}
	}

	pos, vel := r.PositionAndVelocity(5)
	assert.InDelta(t, 5.0, pos.X, 1e-3)
	assert.InDelta(t, 0.0, pos.Y, 1e-3)
	assert.InDelta(t, 0.0, pos.Z, 1e-3)
	assert.InDelta(t, 1.0, r3.Norm(vel), 1e-3)
	assert.InDelta(t, 10.0, r.Length(20), 1e-2)
}

func TestNew_RangeContainment(t *testing.T) {
	t.Parallel()

	def := raildef.New("ranges",
		r3.Vec{X: -4, Y: 2, Z: 7},
		r3.Vec{X: 6, Y: 2, Z: 3},
		r3.Vec{X: 1, Y: 2, Z: -1},
	)
	r, err := New(def, DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)

	tests := []struct {
		axis     spline.Axis
		min, max float64
	}{
		{spline.X, -4, 6},
		{spline.Y, 2, 2},
		{spline.Z, -1, 7},
	}
	for _, tc := range tests {
		rng := r.Spline(tc.axis).Range()
		margin := RangeMargin * (tc.max - tc.min)
		if tc.max == tc.min {
			margin = spline.MinRangeMargin
		}
		assert.InDelta(t, tc.min-margin, rng.Start, 1e-12, "axis %s start", tc.axis)
		assert.InDelta(t, tc.max+margin, rng.End, 1e-12, "axis %s end", tc.axis)
		assert.True(t, rng.StrictlyContains(tc.min), "axis %s min", tc.axis)
		assert.True(t, rng.StrictlyContains(tc.max), "axis %s max", tc.axis)
		assert.Equal(t, DefaultGranularity, r.Spline(tc.axis).Granularity())
	}

	lo, hi := r.Bounds()
	assert.InDelta(t, -5.0, lo.X, 1e-12)
	assert.InDelta(t, 7.0, hi.X, 1e-12)
}

func TestNew_NodeFidelity(t *testing.T) {
	t.Parallel()

	b := &stubBuilder{
		times:       []float64{0, 1.5, 4, 7.25},
		derivatives: []r3.Vec{{X: 1}, {X: 1, Y: 1}, {Y: 1, Z: -2}, {Z: -1}},
	}
	def := raildef.New("fidelity", r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 2}, r3.Vec{X: 1, Y: 2, Z: -3})
	def.ReliableDistance = 0.5

	r, err := New(def, DefaultGranularity, b)
	require.NoError(t, err)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, def.Waypoints, b.lastPositions)
	assert.Equal(t, raildef.Unset, b.lastTotal, "unset hint passed through for builder default")
	assert.Equal(t, 0.5, b.lastReliable)

	for i := 0; i < spline.Dimensions; i++ {
		axis := spline.Axis(i)
		nodes := r.Spline(axis).Nodes()
		require.Len(t, nodes, len(b.times), "axis %s", axis)
		for k, n := range nodes {
			assert.InDelta(t, b.times[k], n.X, 1e-12, "axis %s node %d time", axis, k)
			assert.Equal(t, axis.Component(b.derivatives[k]), n.DyDx, "axis %s node %d slope", axis, k)
			if k > 0 {
				assert.Greater(t, n.X, nodes[k-1].X)
			}
		}
	}
	assert.InDelta(t, 2.0, r.Position(4).Y, 1e-3)
	assert.InDelta(t, -3.0, r.Position(7.25).Z, 1e-3)
}

func TestNew_Failures(t *testing.T) {
	t.Parallel()

	t.Run("no waypoints", func(t *testing.T) {
		t.Parallel()
		b := &stubBuilder{}
		_, err := New(raildef.New("empty"), DefaultGranularity, b)
		assert.ErrorIs(t, err, raildef.ErrNoWaypoints)
		assert.Zero(t, b.calls)
	})

	t.Run("degenerate single waypoint", func(t *testing.T) {
		t.Parallel()
		r, err := New(raildef.New("one", r3.Vec{X: 3}), DefaultGranularity, curve.NewConstSpeed())
		assert.ErrorIs(t, err, curve.ErrDegenerateInput)
		assert.Nil(t, r)
	})

	t.Run("builder error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := New(straightLine(), DefaultGranularity, &stubBuilder{err: boom})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("short timeline", func(t *testing.T) {
		t.Parallel()
		b := &stubBuilder{times: []float64{0}, derivatives: []r3.Vec{{}}}
		_, err := New(straightLine(), DefaultGranularity, b)
		assert.ErrorContains(t, err, "for 2 waypoints")
	})

	t.Run("times not increasing", func(t *testing.T) {
		t.Parallel()
		b := &stubBuilder{times: []float64{3, 1}, derivatives: []r3.Vec{{}, {}}}
		_, err := New(straightLine(), DefaultGranularity, b)
		assert.ErrorContains(t, err, "not strictly increasing")
	})

}

func TestNew_DenseWaypoints(t *testing.T) {
	t.Parallel()

	// 201 waypoints over one unit in one second: 0.005 s apart, half the
	// default granularity.
	waypoints := make([]r3.Vec, 201)
	for k := range waypoints {
		waypoints[k] = r3.Vec{X: float64(k) / 200}
	}
	def := raildef.New("dense", waypoints...)
	def.TotalTime = 1

	r, err := New(def, DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r.StartTime(), 1e-12)
	assert.InDelta(t, 1.0, r.EndTime(), 1e-12)
	assert.Equal(t, 101, r.NumNodes(), "one node per granularity step")

	nodes := r.Spline(spline.X).Nodes()
	for k := 1; k < len(nodes); k++ {
		assert.InDelta(t, DefaultGranularity, nodes[k].X-nodes[k-1].X, 1e-9, "node %d spacing", k)
	}
	for _, tt := range []float64{0, 0.25, 0.5, 0.995, 1} {
		assert.InDelta(t, tt, r.Position(tt).X, 1e-2, "t=%g", tt)
	}
}

func TestNew_LargeCoordinates(t *testing.T) {
	t.Parallel()

	// At this magnitude a 10% margin of a width-2 extent rounds away.
	def := raildef.New("far", r3.Vec{X: 1e16}, r3.Vec{X: 1e16 + 2})
	def.TotalTime = 2

	r, err := New(def, DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)
	rng := r.Spline(spline.X).Range()
	assert.True(t, rng.StrictlyContains(1e16), "%s", rng)
	assert.True(t, rng.StrictlyContains(1e16+2), "%s", rng)
}

func TestRail_VelocityOutsideSpan(t *testing.T) {
	t.Parallel()

	r, err := New(straightLine(), DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)

	for _, tt := range []float64{-1, 11} {
		pos, vel := r.PositionAndVelocity(tt)
		assert.Equal(t, r3.Vec{}, vel, "t=%g", tt)
		assert.InDelta(t, 0.0, r3.Norm(r3.Sub(r.Position(r.clampTime(tt)), pos)), 1e-9, "t=%g", tt)
	}
	assert.InDelta(t, 1.0, r.Velocity(10).X, 1e-3)
}

func TestSample(t *testing.T) {
	t.Parallel()

	r, err := New(straightLine(), DefaultGranularity, curve.NewConstSpeed())
	require.NoError(t, err)

	samples := r.Sample(11)
	require.Len(t, samples, 11)
	for i, s := range samples {
		assert.InDelta(t, float64(i), s.Time, 1e-9)
		assert.InDelta(t, float64(i), s.Position.X, 1e-3)
	}
	assert.Len(t, r.Sample(0), 2)
}
