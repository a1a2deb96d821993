package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestConstSpeed_StraightLine(t *testing.T) {
	t.Parallel()

	positions := []r3.Vec{{}, {X: 10}}
	tl, err := NewConstSpeed().Build(positions, 10, Unset)
	require.NoError(t, err)
	require.NoError(t, tl.Validate(len(positions)))

	assert.Equal(t, []float64{0, 10}, tl.Times)
	for i, d := range tl.Derivatives {
		assert.InDelta(t, 1.0, d.X, 1e-12, "derivative %d", i)
		assert.InDelta(t, 0.0, d.Y, 1e-12, "derivative %d", i)
		assert.InDelta(t, 0.0, d.Z, 1e-12, "derivative %d", i)
	}
}

func TestConstSpeed_DefaultSpeed(t *testing.T) {
	t.Parallel()

	positions := []r3.Vec{{}, {Y: 3}, {Y: 3, Z: 4}}

	tl, err := NewConstSpeed().Build(positions, Unset, Unset)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 7}, tl.Times)

	tl, err = ConstSpeed{DefaultSpeed: 2}.Build(positions, Unset, Unset)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1.5, 3.5}, tl.Times)
	for _, d := range tl.Derivatives {
		assert.InDelta(t, 2.0, r3.Norm(d), 1e-12)
	}
}

func TestConstSpeed_CentralTangent(t *testing.T) {
	t.Parallel()

	// Right angle at the middle waypoint: tangent bisects the corner.
	positions := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}}
	tl, err := NewConstSpeed().Build(positions, 2, Unset)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, tl.Times)
	mid := tl.Derivatives[1]
	assert.InDelta(t, mid.X, mid.Y, 1e-12)
	assert.InDelta(t, 1.0, r3.Norm(mid), 1e-12)
	assert.InDelta(t, 1.0, tl.Derivatives[0].X, 1e-12)
	assert.InDelta(t, 1.0, tl.Derivatives[2].Y, 1e-12)
}

func TestConstSpeed_ReliableDistance(t *testing.T) {
	t.Parallel()

	// A small kink at index 2 is ignored when tangents look 3 units ahead/behind.
	positions := []r3.Vec{{}, {X: 1}, {X: 2, Y: 0.01}, {X: 3}, {X: 4}, {X: 5}}

	tl, err := NewConstSpeed().Build(positions, Unset, 3)
	require.NoError(t, err)
	d := r3.Unit(tl.Derivatives[2])
	assert.InDelta(t, 1.0, d.X, 1e-4)

	tl, err = NewConstSpeed().Build(positions, Unset, Unset)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r3.Unit(tl.Derivatives[2]).Y, "symmetric neighbours cancel the kink")
	assert.Greater(t, r3.Unit(tl.Derivatives[1]).Y, 0.0)
}

func TestConstSpeed_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		positions []r3.Vec
		totalTime float64
	}{
		{"empty", nil, Unset},
		{"single waypoint", []r3.Vec{{X: 1}}, Unset},
		{"coincident waypoints", []r3.Vec{{}, {}, {X: 1}}, Unset},
		{"zero total time", []r3.Vec{{}, {X: 1}}, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewConstSpeed().Build(tc.positions, tc.totalTime, Unset)
			assert.ErrorIs(t, err, ErrDegenerateInput)
		})
	}
}

func TestTimelineValidate(t *testing.T) {
	t.Parallel()

	good := Timeline{Times: []float64{0, 1}, Derivatives: make([]r3.Vec, 2)}
	assert.NoError(t, good.Validate(2))
	assert.Error(t, good.Validate(3))

	flat := Timeline{Times: []float64{0, 0}, Derivatives: make([]r3.Vec, 2)}
	assert.Error(t, flat.Validate(2))
}
