package history

import (
	"fmt"
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
)

// RobotInstance is one timestamped observation within a presence.
type RobotInstance struct {
	Timestamp uint64
	Samples   []*body.Sample
}

// Presence is a maximal contiguous interval during which the robot
// was continuously in a single mode, together with the instances
// observed while in it.
type Presence struct {
	Mode      mode.Mode
	From      uint64
	To        uint64
	Instances []RobotInstance
}

// RobotStateHistory is the append-only, mode-segmented history of a
// single robot's observed segment samples. Every exported method takes
// mu for its full duration, including SnapshotAt: the returned Snapshot
// is built entirely from copied Presence values while the lock is held,
// so it stays valid after the lock is released even while Acquire or
// RemoveOlderThan continue mutating the live history concurrently.
type RobotStateHistory struct {
	mu sync.Mutex

	robot     *body.Robot
	presences []*Presence
	latest    uint64
	hasLatest bool
}

// NewRobotStateHistory returns a history for r, seeded with the
// initial empty-mode presence starting at time zero.
func NewRobotStateHistory(r *body.Robot) *RobotStateHistory {
	return &RobotStateHistory{
		robot:     r,
		presences: []*Presence{{Mode: mode.Mode{}, From: 0, To: 0}},
	}
}

// Acquire applies a new mode/observation report at ts. If ts does not
// strictly exceed the previous latest timestamp, it fails.
func (h *RobotStateHistory) Acquire(m mode.Mode, observations KeypointObservations, ts uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hasLatest && ts <= h.latest {
		return fmt.Errorf("history: timestamp %d does not exceed latest %d: %w", ts, h.latest, cgerr.ErrPrecondition)
	}

	samples, err := buildSamples(h.robot.SegmentList, observations)
	if err != nil {
		return err
	}

	terminal := h.presences[len(h.presences)-1]
	sameMode := false
	if eq, eqErr := terminal.Mode.Equal(m); eqErr == nil && eq {
		sameMode = true
	}

	if sameMode {
		terminal.To = ts
		terminal.Instances = append(terminal.Instances, RobotInstance{Timestamp: ts, Samples: samples})
	} else {
		terminal.To = ts
		h.presences = append(h.presences, &Presence{
			Mode:      m,
			From:      ts,
			To:        ts,
			Instances: []RobotInstance{{Timestamp: ts, Samples: samples}},
		})
	}

	h.latest = ts
	h.hasLatest = true
	return nil
}

// LatestTime returns the most recent reported timestamp, failing if
// the history has never been acquired into.
func (h *RobotStateHistory) LatestTime() (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.hasLatest {
		return 0, fmt.Errorf("history: empty history: %w", cgerr.ErrPrecondition)
	}
	return h.latest, nil
}

// EarliestTime returns the start time of the oldest retained presence:
// the seed presence's zero until RemoveOlderThan has dropped the seed.
func (h *RobotStateHistory) EarliestTime() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presences[0].From
}

// RemoveOlderThan drops whole presences that ended strictly before t,
// and trims instances within a surviving presence to those at or after
// t. The terminal (most recent) presence is never removed; the seed
// presence is dropped like any other once it ended before t.
func (h *RobotStateHistory) RemoveOlderThan(t uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cut := 0
	for cut < len(h.presences)-1 && h.presences[cut].To < t {
		cut++
	}
	h.presences = h.presences[cut:]
	if len(h.presences) > 0 {
		p := h.presences[0]
		instCut := 0
		for instCut < len(p.Instances) && p.Instances[instCut].Timestamp < t {
			instCut++
		}
		p.Instances = p.Instances[instCut:]
	}
}

// SnapshotAt returns a view of the history restricted to presences
// that had begun by ts, with the current (last visible) presence's
// instances trimmed to those at or before ts. The snapshot is built
// entirely from copied Presence values while mu is held, so it remains
// valid for the caller to read after the lock is released.
func (h *RobotStateHistory) SnapshotAt(ts uint64) *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotAtLocked(ts)
}

// snapshotAtLocked is SnapshotAt's body, callable from other methods
// that already hold mu.
func (h *RobotStateHistory) snapshotAtLocked(ts uint64) *Snapshot {
	visible := make([]*Presence, 0, len(h.presences))
	for _, p := range h.presences {
		if p.From <= ts {
			cp := *p
			visible = append(visible, &cp)
		}
	}
	if len(visible) == 0 {
		return &Snapshot{}
	}

	last := visible[len(visible)-1]
	cut := len(last.Instances)
	for cut > 0 && last.Instances[cut-1].Timestamp > ts {
		cut--
	}
	last.Instances = last.Instances[:cut]

	return &Snapshot{presences: visible, segments: h.robot.SegmentList}
}

// LatestSamples returns the samples of the most recently acquired
// instance, failing if the history has never been acquired into.
func (h *RobotStateHistory) LatestSamples() ([]*body.Sample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.hasLatest {
		return nil, fmt.Errorf("history: empty history: %w", cgerr.ErrPrecondition)
	}
	terminal := h.presences[len(h.presences)-1]
	return terminal.Instances[len(terminal.Instances)-1].Samples, nil
}

// ModeAt returns the mode of the presence current at ts (the terminal
// presence of SnapshotAt(ts)).
func (h *RobotStateHistory) ModeAt(ts uint64) (mode.Mode, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := h.snapshotAtLocked(ts)
	if len(snap.presences) == 0 {
		return mode.Mode{}, fmt.Errorf("history: no presence at or before %d: %w", ts, cgerr.ErrPrecondition)
	}
	return snap.presences[len(snap.presences)-1].Mode, nil
}
