package history

import (
	"fmt"
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
	"github.com/elektrokombinacija/cobot-guard/internal/geom"
)

// KeypointObservations maps a keypoint identifier to the list of
// candidate points reported for it in a single frame.
type KeypointObservations map[string][]geom.Point

// HumanStateInstance is one timestamped observation of a human's
// segments.
type HumanStateInstance struct {
	Timestamp uint64
	Samples   []*body.Sample
}

func buildSamples(segments []body.Segment, observations KeypointObservations) ([]*body.Sample, error) {
	samples := make([]*body.Sample, len(segments))
	for i, seg := range segments {
		heads, ok := observations[seg.KeypointA]
		if !ok || len(heads) == 0 {
			return nil, fmt.Errorf("history: missing observations for keypoint %q: %w", seg.KeypointA, cgerr.ErrPrecondition)
		}
		tails, ok := observations[seg.KeypointB]
		if !ok || len(tails) == 0 {
			return nil, fmt.Errorf("history: missing observations for keypoint %q: %w", seg.KeypointB, cgerr.ErrPrecondition)
		}
		s := body.NewSample(seg.Thickness)
		if err := s.Update(heads, tails); err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return samples, nil
}

// HumanStateHistory is the strictly-increasing-timestamp history of a
// single human's observed segment samples. Every exported method takes
// mu for its full duration; instances are returned by value, so a
// caller's copy stays valid after the lock is released even while
// Acquire or RemoveOlderThan continue mutating the live history
// concurrently.
type HumanStateHistory struct {
	mu sync.Mutex

	human     *body.Human
	instances []HumanStateInstance
}

// NewHumanStateHistory returns an empty history for h.
func NewHumanStateHistory(h *body.Human) *HumanStateHistory {
	return &HumanStateHistory{human: h}
}

// Size returns the number of instances in the history.
func (h *HumanStateHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.instances)
}

// Acquire appends a new instance built from observations at ts. ts
// must strictly exceed the previous latest timestamp.
func (h *HumanStateHistory) Acquire(observations KeypointObservations, ts uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.instances) > 0 && ts <= h.instances[len(h.instances)-1].Timestamp {
		return fmt.Errorf("history: timestamp %d does not exceed latest %d: %w", ts, h.instances[len(h.instances)-1].Timestamp, cgerr.ErrPrecondition)
	}
	samples, err := buildSamples(h.human.SegmentList, observations)
	if err != nil {
		return err
	}
	h.instances = append(h.instances, HumanStateInstance{Timestamp: ts, Samples: samples})
	return nil
}

var errEmptyHistory = cgerr.ErrPrecondition

// EarliestTime returns the timestamp of the first instance.
func (h *HumanStateHistory) EarliestTime() (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.instances) == 0 {
		return 0, fmt.Errorf("history: empty history: %w", errEmptyHistory)
	}
	return h.instances[0].Timestamp, nil
}

// LatestTime returns the timestamp of the most recent instance.
func (h *HumanStateHistory) LatestTime() (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.instances) == 0 {
		return 0, fmt.Errorf("history: empty history: %w", errEmptyHistory)
	}
	return h.instances[len(h.instances)-1].Timestamp, nil
}

// InstanceAtNumber returns the instance at index i.
func (h *HumanStateHistory) InstanceAtNumber(i int) (HumanStateInstance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.instances) {
		return HumanStateInstance{}, fmt.Errorf("history: index %d out of range: %w", i, cgerr.ErrPrecondition)
	}
	return h.instances[i], nil
}

// InstanceNumber maps an exact timestamp to its index. It fails if no
// instance carries that exact timestamp.
func (h *HumanStateHistory) InstanceNumber(ts uint64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.instanceNumberLocked(ts)
}

func (h *HumanStateHistory) instanceNumberLocked(ts uint64) (int, error) {
	for i, inst := range h.instances {
		if inst.Timestamp == ts {
			return i, nil
		}
	}
	return 0, fmt.Errorf("history: no instance at timestamp %d: %w", ts, cgerr.ErrPrecondition)
}

// InstanceDistance returns |idx(t2)-idx(t1)|, failing if either
// timestamp is unmatched.
func (h *HumanStateHistory) InstanceDistance(t1, t2 uint64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i1, err := h.instanceNumberLocked(t1)
	if err != nil {
		return 0, err
	}
	i2, err := h.instanceNumberLocked(t2)
	if err != nil {
		return 0, err
	}
	d := i1 - i2
	if d < 0 {
		d = -d
	}
	return d, nil
}

// LatestWithin returns the newest instance with timestamp ≤ ts,
// failing if none exists.
func (h *HumanStateHistory) LatestWithin(ts uint64) (HumanStateInstance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.instances) - 1; i >= 0; i-- {
		if h.instances[i].Timestamp <= ts {
			return h.instances[i], nil
		}
	}
	return HumanStateInstance{}, fmt.Errorf("history: no instance at or before %d: %w", ts, cgerr.ErrPrecondition)
}

// RemoveOlderThan drops every instance with timestamp strictly less
// than t.
func (h *HumanStateHistory) RemoveOlderThan(t uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cut := 0
	for cut < len(h.instances) && h.instances[cut].Timestamp < t {
		cut++
	}
	h.instances = h.instances[cut:]
}
