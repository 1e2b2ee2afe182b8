package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, Snap(10, 20), "exactly half snaps down")
	assert.Equal(t, 20.0, Snap(10.01, 20))
	assert.Equal(t, 0.0, Snap(-5, 20), "negative clamps before snapping")
	assert.Equal(t, 0.0, Snap(-35, 20))
	assert.Equal(t, 40.0, Snap(49, 20))
	assert.Equal(t, 60.0, Snap(51, 20))
	assert.Equal(t, 0.0, Snap(0, 20))
}

func TestSnapNaNPassesThrough(t *testing.T) {
	assert.True(t, math.IsNaN(Snap(math.NaN(), 20)))
	assert.True(t, math.IsNaN(SnapSize(math.NaN(), 20)))
}

func TestSnapIdempotent(t *testing.T) {
	grids := []float64{1, 7, 10, 20, 25.5}
	values := []float64{-100, -0.5, 0, 0.49, 3.3, 9.99, 10, 10.01, 33.7, 99.5, 1234.567}
	for _, g := range grids {
		for _, x := range values {
			once := Snap(x, g)
			assert.Equal(t, once, Snap(once, g), "x=%v g=%v", x, g)
		}
	}
}

func TestSnapSizeFloorsToOneCell(t *testing.T) {
	assert.Equal(t, 20.0, SnapSize(3, 20))
	assert.Equal(t, 20.0, SnapSize(0, 20))
	assert.Equal(t, 100.0, SnapSize(95, 20))
	assert.Equal(t, 80.0, SnapSize(90, 20))
}

func TestSnapPoint(t *testing.T) {
	assert.Equal(t, Pt(20, 40), SnapPoint(Pt(13, 47), 20))
}

func TestRectFromPointsIsNonNegative(t *testing.T) {
	r := RectFromPoints(Pt(50, 10), Pt(10, 40))
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 40, Height: 30}, r)
}

func TestRectContainsBoundaryInclusive(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	assert.True(t, r.Contains(Pt(0, 0)))
	assert.True(t, r.Contains(Pt(100, 50)))
	assert.False(t, r.Contains(Pt(100.5, 50)))

	assert.True(t, r.ContainsRect(Rect{X: 0, Y: 0, Width: 100, Height: 50}), "touching counts as contained")
	assert.False(t, r.ContainsRect(Rect{X: 1, Y: 1, Width: 100, Height: 10}), "overhang excludes")
}

func TestRectContainsAll(t *testing.T) {
	r := Rect{Width: 10, Height: 10}
	assert.True(t, r.ContainsAll([]Point{Pt(0, 0), Pt(10, 10)}))
	assert.False(t, r.ContainsAll([]Point{Pt(0, 0), Pt(11, 10)}))
	assert.False(t, r.ContainsAll(nil))
}

func TestUnionAndBounds(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 20, Y: 5, Width: 10, Height: 20}
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 30, Height: 25}, a.Union(b))
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 4, Height: 6}, Bounds(Pt(3, 2), Pt(-1, 8)))
	assert.Equal(t, Rect{}, Bounds())
}

func TestVectorOps(t *testing.T) {
	v := Vector{X: 3, Y: 4}
	assert.Equal(t, 5.0, v.Len())
	n := v.Normalize()
	assert.InDelta(t, 0.6, n.X, 1e-9)
	assert.InDelta(t, 0.8, n.Y, 1e-9)
	assert.Equal(t, Vector{X: -4, Y: 3}, v.Perp())
	assert.Equal(t, Vector{}, Vector{}.Normalize())
}

func TestBezierEndpoints(t *testing.T) {
	p0, p1, p2, p3 := Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(20, 10)
	assert.Equal(t, p0, BezierPoint(p0, p1, p2, p3, 0))
	assert.Equal(t, p3, BezierPoint(p0, p1, p2, p3, 1))
	mid := BezierPoint(p0, p1, p2, p3, 0.5)
	assert.InDelta(t, 10, mid.X, 1e-9)
	assert.InDelta(t, 5, mid.Y, 1e-9)
}

func TestSegmentDistance(t *testing.T) {
	assert.InDelta(t, 5, SegmentDistance(Pt(5, 5), Pt(0, 0), Pt(10, 0)), 1e-9)
	assert.InDelta(t, 5, SegmentDistance(Pt(-3, 4), Pt(0, 0), Pt(10, 0)), 1e-9)
	assert.InDelta(t, 5, SegmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
}
