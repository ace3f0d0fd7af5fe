// Package history implements the per-body state history engine: an
// append-only record of human keypoint observations and per-robot
// mode-segmented presences, queryable via timestamp lookups and
// point-in-time snapshots.
package history

// Interval is an inclusive [Min,Max] range over an ordered type,
// used to summarise per-presence sample counts.
type Interval[T int | uint | uint64] struct {
	Min T
	Max T
}

// NewInterval builds a degenerate interval [v,v].
func NewInterval[T int | uint | uint64](v T) Interval[T] {
	return Interval[T]{Min: v, Max: v}
}
