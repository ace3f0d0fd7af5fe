// Package geom implements the geometric primitives and distance kernels
// that the rest of cobot-guard builds its collision predictions on:
// points, axis-aligned boxes, spheres, and the segment-distance and
// geometric-median routines used to bound and summarise noisy keypoint
// observations.
package geom

import "math"

// Point is a location in 3D space. A Point with all three coordinates
// NaN is the undefined point, used as a sentinel where no observation
// is available.
type Point struct {
	X, Y, Z float64
}

// Undefined returns the undefined point.
func Undefined() Point {
	return Point{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
}

// IsUndefined reports whether p is the undefined point.
func (p Point) IsUndefined() bool {
	return math.IsNaN(p.X) && math.IsNaN(p.Y) && math.IsNaN(p.Z)
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s, p.Z * s}
}

// Div returns p with every coordinate divided by c.
func (p Point) Div(c float64) Point {
	return Point{p.X / c, p.Y / c, p.Z / c}
}

// Dot returns the dot product of p and q.
func Dot(p, q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Equal reports exact coordinate equality.
func (p Point) Equal(q Point) bool {
	return p.X == q.X && p.Y == q.Y && p.Z == q.Z
}

// Centre returns the midpoint of p1 and p2.
func Centre(p1, p2 Point) Point {
	return p1.Add(p2).Div(2)
}

// Hull returns the minimum axis-aligned box enclosing p1 and p2.
func Hull(p1, p2 Point) Box {
	return Box{
		XL: math.Min(p1.X, p2.X), XU: math.Max(p1.X, p2.X),
		YL: math.Min(p1.Y, p2.Y), YU: math.Max(p1.Y, p2.Y),
		ZL: math.Min(p1.Z, p2.Z), ZU: math.Max(p1.Z, p2.Z),
	}
}

// Average returns the arithmetic mean of pts. It returns an error if
// pts is empty.
func Average(pts []Point) (Point, error) {
	if len(pts) == 0 {
		return Point{}, errEmptyPoints
	}
	var ax, ay, az float64
	for _, p := range pts {
		ax += p.X
		ay += p.Y
		az += p.Z
	}
	n := float64(len(pts))
	return Point{ax / n, ay / n, az / n}, nil
}
