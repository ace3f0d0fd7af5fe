package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
)

var errEmptyPoints = fmt.Errorf("geom: point list is empty: %w", cgerr.ErrPrecondition)

// smallValue is the numerical floor below which the segment-distance
// solver treats a denominator or clamped numerator as zero. Ported
// verbatim from the reference implementation's SMALL_VALUE constant.
const smallValue = 1e-6

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	d := p1.Sub(p2)
	return math.Sqrt(Dot(d, d))
}

// SegmentDistance returns the minimum distance between segment
// (s1h, s1t) and segment (s2h, s2t).
//
// This is a port of the classical closest-point-between-two-segments
// algorithm (Lumelsky 1985 as commonly implemented), clamping the
// parametric coordinates sc/tc to [0,1] in the same branch order as
// the reference implementation so that degenerate and near-parallel
// segments resolve identically.
func SegmentDistance(s1h, s1t, s2h, s2t Point) float64 {
	u := s1t.Sub(s1h)
	v := s2t.Sub(s2h)
	w := s1h.Sub(s2h)

	a := Dot(u, u)
	b := Dot(u, v)
	c := Dot(v, v)
	d := Dot(u, w)
	e := Dot(v, w)
	D := a*c - b*b

	var sc, sN, sD = 0.0, 0.0, D
	var tc, tN, tD = 0.0, 0.0, D

	if D < smallValue {
		sN = 0
		sD = 1
		tN = e
		tD = c
	} else {
		sN = b*e - c*d
		tN = a*e - b*d
		if sN < 0 {
			sN = 0
			tN = e
			tD = c
		} else if sN > sD {
			sN = sD
			tN = e + b
			tD = c
		}
	}

	if tN < 0 {
		tN = 0
		switch {
		case -d < 0:
			sN = 0
		case -d > a:
			sN = sD
		default:
			sN = -d
			sD = a
		}
	} else if tN > tD {
		tN = tD
		switch {
		case (-d + b) < 0:
			sN = 0
		case (-d + b) > a:
			sN = sD
		default:
			sN = -d + b
			sD = a
		}
	}

	if math.Abs(sN) < smallValue {
		sc = 0
	} else {
		sc = sN / sD
	}

	if math.Abs(tN) < smallValue {
		tc = 0
	} else {
		tc = tN / tD
	}

	dP := w.Add(u.Scale(sc)).Sub(v.Scale(tc))
	return math.Sqrt(Dot(dP, dP))
}

// PointSegmentDistance returns the minimum distance between p1 and
// segment (s2h, s2t).
func PointSegmentDistance(p1, s2h, s2t Point) float64 {
	v := s2t.Sub(s2h)
	w := p1.Sub(s2h)

	c := Dot(v, v)
	e := Dot(v, w)
	tN, tD := e, c
	tc := 0.0

	if tN < 0 {
		tN = 0
	} else if tN > tD {
		tN = tD
	}

	if math.Abs(tN) >= smallValue {
		tc = tN / tD
	}

	dP := w.Sub(v.Scale(tc))
	return math.Sqrt(Dot(dP, dP))
}

// GeometricMedian computes the point minimising the sum of distances
// to pts via Weiszfeld's algorithm, iterating until the aggregate
// squared distance stabilises within convergenceThreshold or the
// iteration cap is reached.
func GeometricMedian(pts []Point) (Point, error) {
	const numIterations = 200
	const convergenceThreshold = 0.05

	if len(pts) == 0 {
		return Point{}, errEmptyPoints
	}
	if len(pts) == 1 {
		return pts[0], nil
	}

	r, err := Average(pts)
	if err != nil {
		return Point{}, err
	}

	dist := make([]float64, 0, numIterations)
	converged := false
	i := 0
	for !converged && i < numIterations {
		var denum, d float64
		num := Point{}

		for _, p := range pts {
			div := Distance(p, r)
			num = num.Add(p.Div(div))
			denum += 1.0 / div
			d += div * div
		}
		dist = append(dist, d)

		r = num.Div(denum)

		if i > 3 {
			converged = math.Abs(dist[i]-dist[i-2])/dist[i] < convergenceThreshold
		}

		i++
	}

	if i >= numIterations {
		return Point{}, errNonConvergence
	}

	return r, nil
}

var errNonConvergence = fmt.Errorf("geom: geometric median did not converge: %w", cgerr.ErrNonConvergence)

// ErrNonConvergence reports whether err is the geometric-median
// non-convergence error.
func ErrNonConvergence(err error) bool {
	return errors.Is(err, errNonConvergence)
}
