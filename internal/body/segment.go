// Package body implements the body/segment sample model: thick line
// segments carrying head/tail uncertainty, and the Human/Robot body
// variants that own them.
package body

import (
	"errors"

	"github.com/elektrokombinacija/cobot-guard/internal/geom"
)

// boundEpsilon widens a head/tail bound hull by a small amount so a
// single-candidate update never collapses to a zero-area box.
const boundEpsilon = 1e-9

// Segment is the static description of a body segment: an unordered
// pair of keypoint identifiers plus a thickness.
type Segment struct {
	KeypointA string
	KeypointB string
	Thickness float64
}

// Sample is a dynamic instance of a Segment: head and tail points with
// their uncertainty envelopes and the bounding volumes derived from
// them.
type Sample struct {
	Thickness float64

	Head Point
	Tail Point

	HeadBound geom.Box
	TailBound geom.Box

	// Error is the propagated distance uncertainty: the sum of the
	// head and tail bound circle radii.
	Error float64

	boundingBox    geom.Box
	boundingSphere geom.Sphere
	dirty          bool
}

// Point is an alias kept local to body so callers don't need to import
// geom solely to build a Sample.
type Point = geom.Point

// NewSample returns a sample for the given thickness with an empty,
// not-yet-updated state.
func NewSample(thickness float64) *Sample {
	return &Sample{Thickness: thickness, dirty: true}
}

var errNoCandidates = errors.New("body: update requires at least one head and one tail candidate")

// Update recomputes head/tail as the mean of the candidate points and
// their bounds as the hull of all candidates, widened by a small
// epsilon, invalidating the cached bounding volumes.
func (s *Sample) Update(heads, tails []Point) error {
	if len(heads) == 0 || len(tails) == 0 {
		return errNoCandidates
	}

	head, err := geom.Average(heads)
	if err != nil {
		return err
	}
	tail, err := geom.Average(tails)
	if err != nil {
		return err
	}

	headBound := geom.EmptyBox()
	for _, p := range heads {
		headBound = geom.Hull2(headBound, geom.Widen(geom.Hull(p, p), boundEpsilon))
	}
	tailBound := geom.EmptyBox()
	for _, p := range tails {
		tailBound = geom.Hull2(tailBound, geom.Widen(geom.Hull(p, p), boundEpsilon))
	}

	s.Head = head
	s.Tail = tail
	s.HeadBound = headBound
	s.TailBound = tailBound
	s.Error = headBound.CircleRadius() + tailBound.CircleRadius()
	s.dirty = true
	return nil
}

func (s *Sample) refresh() {
	if !s.dirty {
		return
	}
	hull := geom.Hull2(s.HeadBound, s.TailBound)
	s.boundingBox = geom.Widen(hull, s.Thickness)
	s.boundingSphere = geom.Sphere{
		Centre: geom.Centre(s.Head, s.Tail),
		Radius: geom.Distance(s.Head, s.Tail)/2 + s.Thickness + s.Error/2,
	}
	s.dirty = false
}

// BoundingBox returns the sample's bounding box.
func (s *Sample) BoundingBox() geom.Box {
	s.refresh()
	return s.boundingBox
}

// BoundingSphere returns the sample's bounding sphere.
func (s *Sample) BoundingSphere() geom.Sphere {
	s.refresh()
	return s.boundingSphere
}

// Intersects conservatively tests whether s and other may be in
// contact, short-circuiting on the cheapest refutation: disjoint
// bounding spheres, then disjoint bounding boxes, then the exact
// thickened-segment distance test.
func (s *Sample) Intersects(other *Sample) bool {
	if !s.BoundingSphere().Intersects(other.BoundingSphere()) {
		return false
	}
	if s.BoundingBox().Disjoint(other.BoundingBox()) {
		return false
	}
	d := geom.SegmentDistance(s.Head, s.Tail, other.Head, other.Tail)
	return d <= s.Thickness+other.Thickness+s.Error+other.Error
}

// DistanceTo returns the thickness- and error-corrected minimum
// distance between s and other, floored at zero.
func (s *Sample) DistanceTo(other *Sample) float64 {
	d := geom.SegmentDistance(s.Head, s.Tail, other.Head, other.Tail)
	d -= s.Thickness + other.Thickness + s.Error + other.Error
	if d < 0 {
		return 0
	}
	return d
}
