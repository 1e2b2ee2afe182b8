package geometry

import "math"

// Snap adsorbs value to the nearer of the two grid lines that bracket it.
// A value exactly half way snaps down. The lower line never goes below 0,
// so negative values land on 0. NaN is returned unchanged so layout code can
// run before sizes are known.
func Snap(value, grid float64) float64 {
	if math.IsNaN(value) || grid <= 0 {
		return value
	}
	quotient := math.Trunc(value / grid)
	lo := math.Max(0, grid*quotient)
	hi := lo + grid
	if value-lo > grid/2 {
		return hi
	}
	return lo
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p Point, grid float64) Point {
	return Point{X: Snap(p.X, grid), Y: Snap(p.Y, grid)}
}

// SnapSize snaps a dimension and floors it to one grid cell.
func SnapSize(value, grid float64) float64 {
	if math.IsNaN(value) {
		return value
	}
	return math.Max(grid, Snap(value, grid))
}
