package barrier

import (
	"testing"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/geom"
)

func sampleAt(x, y float64) *body.Sample {
	s := body.NewSample(0.1)
	_ = s.Update([]geom.Point{{X: x, Y: y, Z: 0}}, []geom.Point{{X: x + 1, Y: y, Z: 0}})
	return s
}

func TestCheckAndUpdateStrictlyDecreasingDistancesNeverExtend(t *testing.T) {
	human := sampleAt(0, 0)
	section := NewSphereMinimumDistanceBarrierSequenceSection(human)

	// Robot samples placed at increasingly far Y offsets but
	// decreasing in sequence order, so each successive distance is
	// strictly smaller than the last.
	ys := []float64{20, 15, 10, 6, 3, 1}
	var lastDistance float64 = -1
	for i, y := range ys {
		r := sampleAt(0, y)
		ok := section.CheckAndUpdate(r, PathKey{PathID: 0, Index: i})
		if !ok {
			t.Fatalf("unexpected halt at index %d", i)
		}
		if lastDistance >= 0 && section.Size() != i+1 {
			t.Fatalf("expected a new barrier per strictly closer sample at index %d, size=%d", i, section.Size())
		}
		last, _ := section.LastBarrier()
		if lastDistance >= 0 && last.Distance >= lastDistance {
			t.Errorf("index %d: expected strictly decreasing barrier distance, got %v after %v", i, last.Distance, lastDistance)
		}
		lastDistance = last.Distance
	}
	if section.Size() != len(ys) {
		t.Errorf("expected %d barriers, got %d", len(ys), section.Size())
	}
}

func TestCheckAndUpdateFartherSampleExtendsMostRecentBarrierOnly(t *testing.T) {
	human := sampleAt(0, 0)
	section := NewSphereMinimumDistanceBarrierSequenceSection(human)

	// First barrier, far away.
	section.CheckAndUpdate(sampleAt(0, 20), PathKey{Index: 0})
	sizeAfterFirst := section.Size()

	// A closer sample starts a new (second) barrier.
	section.CheckAndUpdate(sampleAt(0, 5), PathKey{Index: 1})
	sizeAfterCloser := section.Size()
	if sizeAfterCloser != sizeAfterFirst+1 {
		t.Fatalf("expected a new barrier for the closer sample, got size %d", sizeAfterCloser)
	}

	// A farther sample (farther than the second barrier, but still
	// closer than the first) extends the second barrier's range
	// rather than starting a third or touching the first.
	section.CheckAndUpdate(sampleAt(0, 8), PathKey{Index: 2})
	if section.Size() != sizeAfterCloser {
		t.Fatalf("expected farther sample to extend, not add, a barrier; size went from %d to %d", sizeAfterCloser, section.Size())
	}
	last, _ := section.LastBarrier()
	if last.Range.MaximumSampleIndex() != 2 {
		t.Errorf("expected last barrier's range to extend to index 2, got %d", last.Range.MaximumSampleIndex())
	}
	if last.Range.MinimumSampleIndex() != 1 {
		t.Errorf("expected last barrier's range to still start at index 1, got %d", last.Range.MinimumSampleIndex())
	}
}

func TestCheckAndUpdateZeroDistanceHaltsWalk(t *testing.T) {
	human := sampleAt(0, 0)
	section := NewSphereMinimumDistanceBarrierSequenceSection(human)

	robotOnTop := body.NewSample(0.1)
	_ = robotOnTop.Update([]geom.Point{{X: 0, Y: 0, Z: 0}}, []geom.Point{{X: 1, Y: 0, Z: 0}})

	if ok := section.CheckAndUpdate(robotOnTop, PathKey{Index: 0}); ok {
		t.Errorf("expected contact (distance 0) to halt the walk")
	}
}

// TestResetThenRewalkMatchesFreshWalk checks that resuming from a
// reset section reproduces the same barrier sequence a from-scratch
// walk over the same suffix would.
func TestResetThenRewalkMatchesFreshWalk(t *testing.T) {
	human := sampleAt(0, 0)
	robots := make([]*body.Sample, 0, 10)
	for i := 0; i < 10; i++ {
		robots = append(robots, sampleAt(0, float64(10-i)))
	}

	fullWalk := NewSphereMinimumDistanceBarrierSequenceSection(human)
	for i, r := range robots {
		fullWalk.CheckAndUpdate(r, PathKey{Index: i})
	}

	resumed := NewSphereMinimumDistanceBarrierSequenceSection(human)
	for i := 0; i < 5; i++ {
		resumed.CheckAndUpdate(robots[i], PathKey{Index: i})
	}
	resumeFrom := resumed.Reset(human, PathKey{}, 4)
	for i := resumeFrom; i < 10; i++ {
		resumed.CheckAndUpdate(robots[i], PathKey{Index: i})
	}

	full := fullWalk.Barriers()
	got := resumed.Barriers()
	if len(full) != len(got) {
		t.Fatalf("barrier count mismatch: fresh=%d resumed=%d", len(full), len(got))
	}
	for i := range full {
		if full[i].Distance != got[i].Distance {
			t.Errorf("barrier %d distance mismatch: fresh=%v resumed=%v", i, full[i].Distance, got[i].Distance)
		}
	}
}

func TestReuseElementRejectsStaleSampleWithoutRecordedSample(t *testing.T) {
	section := &SphereMinimumDistanceBarrierSequenceSection{human: sampleAt(0, 0)}
	section.barriers = []Barrier{{Distance: 5, Range: Range{MinIndex: 0, MaxIndex: 0}}}
	if section.reuseElement(sampleAt(0, 0)) != 0 {
		t.Errorf("expected no reuse for a barrier with no recorded sample")
	}
}
