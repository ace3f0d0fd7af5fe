package history

import (
	"fmt"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
)

// Snapshot is an immutable view of a RobotStateHistory truncated to
// times at or before a given timestamp. RobotStateHistory.SnapshotAt
// builds it from copies of the visible presences while holding the
// history's mutex, so it stays valid after later Acquire or
// RemoveOlderThan calls on that history.
type Snapshot struct {
	presences []*Presence
	segments  []body.Segment
}

// completed returns every visible presence except the last (the
// "current" one at the snapshot's timestamp, which may still be
// accumulating instances).
func (s *Snapshot) completed() []*Presence {
	if len(s.presences) <= 1 {
		return nil
	}
	return s.presences[:len(s.presences)-1]
}

func modeEquals(a, b mode.Mode) bool {
	eq, err := a.Equal(b)
	return err == nil && eq
}

// PresencesIn returns the completed presences whose mode equals m.
func (s *Snapshot) PresencesIn(m mode.Mode) []*Presence {
	var out []*Presence
	for _, p := range s.completed() {
		if modeEquals(p.Mode, m) {
			out = append(out, p)
		}
	}
	return out
}

// PresencesExitingInto returns the presences (including the seed
// empty-mode presence) whose immediate successor in the snapshot has
// mode m.
func (s *Snapshot) PresencesExitingInto(m mode.Mode) []*Presence {
	var out []*Presence
	for i := 0; i+1 < len(s.presences); i++ {
		if modeEquals(s.presences[i+1].Mode, m) {
			out = append(out, s.presences[i])
		}
	}
	return out
}

// PresencesBetween returns the completed presences of mode a that are
// immediately followed, in the snapshot, by a presence of mode b.
func (s *Snapshot) PresencesBetween(a, b mode.Mode) []*Presence {
	var out []*Presence
	for i := 0; i+1 < len(s.presences); i++ {
		if modeEquals(s.presences[i].Mode, a) && modeEquals(s.presences[i+1].Mode, b) {
			out = append(out, s.presences[i])
		}
	}
	return out
}

// ModesWithSamples returns the distinct modes among completed
// presences that carry at least one instance.
func (s *Snapshot) ModesWithSamples() []mode.Mode {
	var out []mode.Mode
	seen := make(map[string]struct{})
	for _, p := range s.completed() {
		if len(p.Instances) == 0 {
			continue
		}
		key := p.Mode.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.Mode)
	}
	return out
}

// Samples returns, per segment index, the concatenation of per-segment
// samples from every completed instance of mode m, in chronological
// order. It fails if no completed presence of m carries any instance.
func (s *Snapshot) Samples(m mode.Mode) ([][]*body.Sample, error) {
	numSegments := len(s.segments)
	out := make([][]*body.Sample, numSegments)
	found := false
	for _, p := range s.PresencesIn(m) {
		for _, inst := range p.Instances {
			found = true
			for seg := 0; seg < numSegments && seg < len(inst.Samples); seg++ {
				out[seg] = append(out[seg], inst.Samples[seg])
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("history: no samples for mode %s: %w", m.Key(), cgerr.ErrPrecondition)
	}
	return out, nil
}

// RangeOfNumSamplesIn returns the [min,max] instance count across
// completed presences of mode m.
func (s *Snapshot) RangeOfNumSamplesIn(m mode.Mode) Interval[uint] {
	return rangeOfInstanceCounts(s.PresencesIn(m))
}

// RangeOfNumSamplesInPair returns the [min,max] instance count across
// completed presences of mode a that are immediately followed by mode
// b.
func (s *Snapshot) RangeOfNumSamplesInPair(a, b mode.Mode) Interval[uint] {
	return rangeOfInstanceCounts(s.PresencesBetween(a, b))
}

func rangeOfInstanceCounts(presences []*Presence) Interval[uint] {
	if len(presences) == 0 {
		return Interval[uint]{Min: 0, Max: 0}
	}
	min, max := uint(len(presences[0].Instances)), uint(len(presences[0].Instances))
	for _, p := range presences[1:] {
		n := uint(len(p.Instances))
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return Interval[uint]{Min: min, Max: max}
}

// ModeTrace returns the trace of completed, non-empty modes leading up
// to the snapshot's timestamp, each with likelihood 1.
func (s *Snapshot) ModeTrace() mode.Trace {
	t := mode.Trace{}
	for _, p := range s.completed() {
		if p.Mode.IsEmpty() {
			continue
		}
		t = t.PushBackDefault(p.Mode)
	}
	return t
}

// CanLookAhead reports whether the terminal (current) presence's mode
// has occurred earlier in the trace, meaning a full prior presence's
// worth of successor samples is already known for it.
func (s *Snapshot) CanLookAhead() bool {
	if len(s.presences) == 0 {
		return false
	}
	terminal := s.presences[len(s.presences)-1]
	return s.ModeTrace().Contains(terminal.Mode)
}
