// Package barrier implements the forward minimum-distance barrier
// sequence used by look-ahead jobs to detect predicted contact
// between a fixed human sample and a forward-ordered sequence of
// robot samples.
package barrier

// PathKey identifies a position within one of possibly several
// candidate future robot paths being walked concurrently: PathID
// distinguishes the path, Index is the sample's position along it.
type PathKey struct {
	PathID int
	Index  int
}

// Range is the contiguous span of sample indices, within a single
// path, over which a barrier's distance was the running prefix
// minimum.
type Range struct {
	PathID   int
	MinIndex int
	MaxIndex int
}

// MinimumSampleIndex returns the first index achieving this barrier.
func (r Range) MinimumSampleIndex() int { return r.MinIndex }

// MaximumSampleIndex returns the last index still covered by this
// barrier before a lower distance superseded it.
func (r Range) MaximumSampleIndex() int { return r.MaxIndex }
