package barrier

import "github.com/elektrokombinacija/cobot-guard/internal/body"

// Barrier records the prefix-minimum distance observed while walking
// a path, the index range over which it held, and the robot sample
// that achieved it (kept to support reuse validity checks on reset).
type Barrier struct {
	Distance float64
	Range    Range

	sample *body.Sample
}

// SphereMinimumDistanceBarrierSequenceSection walks a forward-ordered
// sequence of robot samples against a fixed human sample, maintaining
// a monotonically non-increasing sequence of barriers.
type SphereMinimumDistanceBarrierSequenceSection struct {
	human    *body.Sample
	path     PathKey
	barriers []Barrier
}

// NewSphereMinimumDistanceBarrierSequenceSection starts a fresh
// section anchored on human sample h.
func NewSphereMinimumDistanceBarrierSequenceSection(h *body.Sample) *SphereMinimumDistanceBarrierSequenceSection {
	return &SphereMinimumDistanceBarrierSequenceSection{human: h}
}

// CheckAndUpdate folds robot sample r, observed at key, into the
// barrier sequence. It returns false exactly when the observed
// distance hits (or crosses below) zero, signalling contact and that
// the walk should halt; it returns true otherwise, including when it
// merely extends the running barrier.
func (s *SphereMinimumDistanceBarrierSequenceSection) CheckAndUpdate(r *body.Sample, key PathKey) bool {
	d := s.human.DistanceTo(r)

	if n := len(s.barriers); n > 0 {
		last := &s.barriers[n-1]
		if d > last.Distance {
			last.Range.MaxIndex = key.Index
			return true
		}
	}

	s.barriers = append(s.barriers, Barrier{
		Distance: d,
		Range:    Range{PathID: key.PathID, MinIndex: key.Index, MaxIndex: key.Index},
		sample:   r,
	})
	return d > 0
}

// LastBarrier returns the most recently recorded barrier, if any.
func (s *SphereMinimumDistanceBarrierSequenceSection) LastBarrier() (Barrier, bool) {
	if len(s.barriers) == 0 {
		return Barrier{}, false
	}
	return s.barriers[len(s.barriers)-1], true
}

// Barriers returns a snapshot of the recorded barrier sequence.
func (s *SphereMinimumDistanceBarrierSequenceSection) Barriers() []Barrier {
	out := make([]Barrier, len(s.barriers))
	copy(out, s.barriers)
	return out
}

// Size returns the number of barriers recorded so far.
func (s *SphereMinimumDistanceBarrierSequenceSection) Size() int { return len(s.barriers) }

// validFor reports whether b's recorded distance remains conservatively
// close enough, for the replacement human sample newH, to be reused
// without re-walking the robot samples it covers.
func (s *SphereMinimumDistanceBarrierSequenceSection) validFor(newH *body.Sample, b Barrier) bool {
	if b.sample == nil {
		return false
	}
	newDist := newH.DistanceTo(b.sample)
	diff := newDist - b.Distance
	if diff < 0 {
		diff = -diff
	}
	return diff < newH.Error+s.human.Error
}

// reuseElement binary-searches the barrier list for the number of
// leading barriers that remain valid for newH, assuming validity holds
// for a prefix and fails from some point on (the distances the
// barriers record only grow more stale the further the walk has gone).
func (s *SphereMinimumDistanceBarrierSequenceSection) reuseElement(newH *body.Sample) int {
	lo, hi := 0, len(s.barriers)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.validFor(newH, s.barriers[mid]) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Reset replaces the anchor human sample and active path, discarding
// barriers that either exceed keepUpToIndex or no longer pass the
// reuse-validity check against newH, and returns the surviving prefix
// length (the index from which the caller should resume walking).
func (s *SphereMinimumDistanceBarrierSequenceSection) Reset(newH *body.Sample, newPath PathKey, keepUpToIndex int) int {
	reusable := s.reuseElement(newH)
	keep := 0
	for keep < len(s.barriers) && keep < reusable && s.barriers[keep].Range.MaxIndex <= keepUpToIndex {
		keep++
	}
	s.barriers = s.barriers[:keep]
	s.human = newH
	s.path = newPath
	return keep
}
