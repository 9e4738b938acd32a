package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacerobots2/internal/random"
)

func TestPointArithmetic(t *testing.T) {
	a := Point{1, 2}
	b := Point{4, 6}

	assert.Equal(t, Point{5, 8}, a.Add(b))
	assert.Equal(t, Point{-3, -4}, a.Sub(b))
	assert.Equal(t, float32(25), a.DistanceSquared(b))
	assert.Equal(t, float32(5), a.Distance(b))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"inside", Point{50, 50}, Point{50, 50}},
		{"left", Point{-10, 50}, Point{0, 50}},
		{"right", Point{150, 50}, Point{100, 50}},
		{"above", Point{50, -1}, Point{50, 0}},
		{"below", Point{50, 300}, Point{50, 200}},
		{"corner", Point{-5, 500}, Point{0, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp(0, 100, 0, 200))
		})
	}
}

func TestMoveTowardNeverOvershoots(t *testing.T) {
	rng := random.New(0x5EED)
	for i := 0; i < 1000; i++ {
		p := Point{rng.FloatRange(0, 1000), rng.FloatRange(0, 1000)}
		q := Point{rng.FloatRange(0, 1000), rng.FloatRange(0, 1000)}
		step := rng.FloatRange(0, 50)

		moved := p.MoveToward(q, step)
		require.LessOrEqual(t, p.Distance(moved), step+Micron)
		// Moving never increases the remaining distance.
		require.LessOrEqual(t, moved.Distance(q), p.Distance(q)+Micron)
	}
}

func TestMoveTowardArrives(t *testing.T) {
	p := Point{10, 10}
	q := Point{11, 10}
	assert.Equal(t, q, p.MoveToward(q, 5))
	assert.Equal(t, p, p.MoveToward(q, 0))
}

func TestCircleIntersects(t *testing.T) {
	a := Circle{Point{0, 0}, 10}

	assert.True(t, a.Intersects(Circle{Point{15, 0}, 5}), "touching counts")
	assert.True(t, a.Intersects(Circle{Point{5, 5}, 1}))
	assert.False(t, a.Intersects(Circle{Point{20, 0}, 5}))
}

func TestPolarRoundTrip(t *testing.T) {
	origin := Point{100, 100}
	p := Point{130, 140}

	pp := p.ToPolar(origin)
	back := pp.ToCartesian(origin)
	assert.InDelta(t, p.X, back.X, 1e-3)
	assert.InDelta(t, p.Y, back.Y, 1e-3)
}

func TestUnitToward(t *testing.T) {
	u := Point{0, 0}.UnitToward(Point{0, 5})
	assert.InDelta(t, 0, u.X, 1e-6)
	assert.InDelta(t, 1, u.Y, 1e-6)

	assert.Equal(t, Point{}, Point{3, 3}.UnitToward(Point{3, 3}))
}

// The batched kernel and the scalar fallback must agree on every lane,
// including touching and near-miss circles.
func TestIntersectLanesMatchesScalar(t *testing.T) {
	rng := random.New(0xBA7C4)
	for iter := 0; iter < 2000; iter++ {
		sx := rng.FloatRange(0, 500)
		sy := rng.FloatRange(0, 500)
		sr := rng.FloatRange(0, 100)

		var b LaneBlock
		for i := 0; i < Lanes; i++ {
			b.X[i] = rng.FloatRange(0, 500)
			b.Y[i] = rng.FloatRange(0, 500)
			b.R[i] = rng.FloatRange(0, 100)
		}

		mask := IntersectLanes(sx, sy, sr, &b)
		for i := 0; i < Lanes; i++ {
			want := IntersectScalar(sx, sy, sr, b.X[i], b.Y[i], b.R[i])
			got := mask&(1<<i) != 0
			require.Equal(t, want, got,
				"lane %d disagrees: s=(%f,%f,%f) m=(%f,%f,%f)",
				i, sx, sy, sr, b.X[i], b.Y[i], b.R[i])
		}
	}
}

func TestIntersectLanesExact(t *testing.T) {
	// Circles at distance exactly r1+r2 intersect on both paths.
	var b LaneBlock
	for i := 0; i < Lanes; i++ {
		b.X[i] = 30
		b.R[i] = 10
	}
	mask := IntersectLanes(0, 0, 20, &b)
	assert.Equal(t, uint8(0xFF), mask)
	assert.True(t, IntersectScalar(0, 0, 20, 30, 0, 10))
}
