package geom

import "math"

// Box is an axis-aligned box in 3D space.
type Box struct {
	XL, XU float64
	YL, YU float64
	ZL, ZU float64
}

// EmptyBox returns the canonical empty box: an interval of +inf..-inf
// on every axis, so that IsEmpty reports true and unioning it with any
// point or box yields that point or box unchanged.
func EmptyBox() Box {
	return Box{
		XL: math.Inf(1), XU: math.Inf(-1),
		YL: math.Inf(1), YU: math.Inf(-1),
		ZL: math.Inf(1), ZU: math.Inf(-1),
	}
}

// IsEmpty reports whether b has an inverted bound on any axis.
func (b Box) IsEmpty() bool {
	return b.XL > b.XU || b.YL > b.YU || b.ZL > b.ZU
}

// Centre returns the centre point of b. The caller must ensure b is
// not empty.
func (b Box) Centre() Point {
	return Point{(b.XL + b.XU) / 2, (b.YL + b.YU) / 2, (b.ZL + b.ZU) / 2}
}

// CircleRadius returns the radius of the sphere circumscribing b.
func (b Box) CircleRadius() float64 {
	dx, dy, dz := b.XU-b.XL, b.YU-b.YL, b.ZU-b.ZL
	return math.Sqrt(dx*dx+dy*dy+dz*dz) / 2
}

// Disjoint reports whether b and other share no common point.
func (b Box) Disjoint(other Box) bool {
	return b.XU < other.XL || b.XL > other.XU ||
		b.YU < other.YL || b.YL > other.YU ||
		b.ZU < other.ZL || b.ZL > other.ZU
}

// Widen returns b expanded by v on every bound in every direction.
func Widen(b Box, v float64) Box {
	return Box{
		XL: b.XL - v, XU: b.XU + v,
		YL: b.YL - v, YU: b.YU + v,
		ZL: b.ZL - v, ZU: b.ZU + v,
	}
}

// Hull2 returns the minimum box enclosing both a and b.
func Hull2(a, b Box) Box {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Box{
		XL: math.Min(a.XL, b.XL), XU: math.Max(a.XU, b.XU),
		YL: math.Min(a.YL, b.YL), YU: math.Max(a.YU, b.YU),
		ZL: math.Min(a.ZL, b.ZL), ZU: math.Max(a.ZU, b.ZU),
	}
}

// Sphere is a bounding volume represented by a centre and a radius.
type Sphere struct {
	Centre Point
	Radius float64
}

// Intersects reports whether two spheres overlap or touch.
func (s Sphere) Intersects(other Sphere) bool {
	return Distance(s.Centre, other.Centre) <= s.Radius+other.Radius
}

// BoundingSphere returns the sphere circumscribing b.
func (b Box) BoundingSphere() Sphere {
	return Sphere{Centre: b.Centre(), Radius: b.CircleRadius()}
}
