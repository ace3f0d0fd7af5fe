package runtime

import (
	"fmt"
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
	"github.com/elektrokombinacija/cobot-guard/internal/history"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
)

// HumanRobotIDPair is a pending candidate pairing awaiting enough
// history depth on both sides to be promoted into look-ahead jobs.
type HumanRobotIDPair struct {
	Human string
	Robot string
}

// BodyRegistry owns the body and history lookup tables behind a single
// mutex, held for the map access (HumanHistorySize and the RemoveOld*
// purges also hold it across the history call that follows). Each returned
// HumanStateHistory/RobotStateHistory guards its own presences/instances
// with its own mutex, so dispatcher handlers and worker-pool goroutines
// can safely acquire into and read from a body's history concurrently.
type BodyRegistry struct {
	mu sync.Mutex

	humans       map[string]*body.Human
	humanHistory map[string]*history.HumanStateHistory
	robots       map[string]*body.Robot
	robotHistory map[string]*history.RobotStateHistory
}

// NewBodyRegistry returns an empty registry.
func NewBodyRegistry() *BodyRegistry {
	return &BodyRegistry{
		humans:       make(map[string]*body.Human),
		humanHistory: make(map[string]*history.HumanStateHistory),
		robots:       make(map[string]*body.Robot),
		robotHistory: make(map[string]*history.RobotStateHistory),
	}
}

func segmentsFromSpec(pairs []SegmentPairSpec, thicknesses []float64) []body.Segment {
	segs := make([]body.Segment, len(pairs))
	for i, p := range pairs {
		t := 0.0
		if i < len(thicknesses) {
			t = thicknesses[i]
		}
		segs[i] = body.Segment{KeypointA: p.A, KeypointB: p.B, Thickness: t}
	}
	return segs
}

// Contains reports whether id names any registered body.
func (r *BodyRegistry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, h := r.humans[id]
	_, rb := r.robots[id]
	return h || rb
}

// HumanIDs returns the ids of every registered human.
func (r *BodyRegistry) HumanIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.humans))
	for id := range r.humans {
		out = append(out, id)
	}
	return out
}

// RobotIDs returns the ids of every registered robot.
func (r *BodyRegistry) RobotIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.robots))
	for id := range r.robots {
		out = append(out, id)
	}
	return out
}

// Insert registers a body from its presentation message.
func (r *BodyRegistry) Insert(msg BodyPresentationMessage) {
	segs := segmentsFromSpec(msg.SegmentPairs, msg.Thicknesses)
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.IsHuman {
		h := &body.Human{IDValue: msg.ID, SegmentList: segs}
		r.humans[msg.ID] = h
		r.humanHistory[msg.ID] = history.NewHumanStateHistory(h)
	} else {
		rb := &body.Robot{IDValue: msg.ID, SegmentList: segs, MessageFrequency: msg.Frequency}
		r.robots[msg.ID] = rb
		r.robotHistory[msg.ID] = history.NewRobotStateHistory(rb)
	}
}

// InsertDefaultHuman registers a human with a caller-supplied default
// segment layout, used when a state message arrives for an id that
// was never presented.
func (r *BodyRegistry) InsertDefaultHuman(id string, segs []body.Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &body.Human{IDValue: id, SegmentList: segs}
	r.humans[id] = h
	r.humanHistory[id] = history.NewHumanStateHistory(h)
}

// Remove deletes a body and its history entirely.
func (r *BodyRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.humans, id)
	delete(r.humanHistory, id)
	delete(r.robots, id)
	delete(r.robotHistory, id)
}

func registryMiss(id string) error {
	return fmt.Errorf("runtime: unknown body %q: %w", id, cgerr.ErrRegistryMiss)
}

// Human returns the registered human by id.
func (r *BodyRegistry) Human(id string) (*body.Human, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.humans[id]
	if !ok {
		return nil, registryMiss(id)
	}
	return h, nil
}

// Robot returns the registered robot by id.
func (r *BodyRegistry) Robot(id string) (*body.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.robots[id]
	if !ok {
		return nil, registryMiss(id)
	}
	return rb, nil
}

// HumanHistory returns the history engine for a registered human.
func (r *BodyRegistry) HumanHistory(id string) (*history.HumanStateHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.humanHistory[id]
	if !ok {
		return nil, registryMiss(id)
	}
	return h, nil
}

// RobotHistory returns the history engine for a registered robot.
func (r *BodyRegistry) RobotHistory(id string) (*history.RobotStateHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.robotHistory[id]
	if !ok {
		return nil, registryMiss(id)
	}
	return h, nil
}

// AcquireHumanState feeds one frame of observations into a human's
// history.
func (r *BodyRegistry) AcquireHumanState(id string, obs history.KeypointObservations, ts uint64) error {
	r.mu.Lock()
	h, ok := r.humanHistory[id]
	r.mu.Unlock()
	if !ok {
		return registryMiss(id)
	}
	return h.Acquire(obs, ts)
}

// AcquireRobotState feeds one frame of mode and observations into a
// robot's history.
func (r *BodyRegistry) AcquireRobotState(id string, m mode.Mode, obs history.KeypointObservations, ts uint64) error {
	r.mu.Lock()
	h, ok := r.robotHistory[id]
	r.mu.Unlock()
	if !ok {
		return registryMiss(id)
	}
	return h.Acquire(m, obs, ts)
}

// HumanHistorySize returns the number of instances recorded for a
// human, or 0 if the human is unknown.
func (r *BodyRegistry) HumanHistorySize(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.humanHistory[id]
	if !ok {
		return 0
	}
	return h.Size()
}

// LatestHumanTimestamp returns the latest reported timestamp for a
// human.
func (r *BodyRegistry) LatestHumanTimestamp(id string) (uint64, error) {
	r.mu.Lock()
	h, ok := r.humanHistory[id]
	r.mu.Unlock()
	if !ok {
		return 0, registryMiss(id)
	}
	return h.LatestTime()
}

// HasHumanInstancesWithin reports whether a human has any recorded
// instance at or before ts.
func (r *BodyRegistry) HasHumanInstancesWithin(id string, ts uint64) bool {
	_, err := r.LatestHumanInstanceWithin(id, ts)
	return err == nil
}

// LatestHumanInstanceWithin returns the newest human instance at or
// before ts.
func (r *BodyRegistry) LatestHumanInstanceWithin(id string, ts uint64) (history.HumanStateInstance, error) {
	r.mu.Lock()
	h, ok := r.humanHistory[id]
	r.mu.Unlock()
	if !ok {
		return history.HumanStateInstance{}, registryMiss(id)
	}
	return h.LatestWithin(ts)
}

// InstanceDistance returns the index distance between two timestamps
// in a human's history.
func (r *BodyRegistry) InstanceDistance(humanID string, t1, t2 uint64) (int, error) {
	r.mu.Lock()
	h, ok := r.humanHistory[humanID]
	r.mu.Unlock()
	if !ok {
		return 0, registryMiss(humanID)
	}
	return h.InstanceDistance(t1, t2)
}

// RemoveOldHumanHistory drops a human's instances older than
// retentionMS behind msgTimestampMS, once the span from the earliest
// instance to msgTimestampMS exceeds retentionMS+purgePeriodMS,
// mirroring the original engine's purge cadence.
func (r *BodyRegistry) RemoveOldHumanHistory(id string, msgTimestampMS, retentionMS, purgePeriodMS uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.humanHistory[id]
	if !ok {
		return
	}
	earliest, err := h.EarliestTime()
	if err != nil {
		return
	}
	if msgTimestampMS-earliest > retentionMS+purgePeriodMS {
		h.RemoveOlderThan(msgTimestampMS - retentionMS)
	}
}

// RemoveOldRobotHistory purges a robot's history with the same cadence
// as RemoveOldHumanHistory.
func (r *BodyRegistry) RemoveOldRobotHistory(id string, msgTimestampMS, retentionMS, purgePeriodMS uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.robotHistory[id]
	if !ok {
		return
	}
	if msgTimestampMS-h.EarliestTime() > retentionMS+purgePeriodMS {
		h.RemoveOlderThan(msgTimestampMS - retentionMS)
	}
}
