package runtime

import (
	"github.com/elektrokombinacija/cobot-guard/internal/barrier"
	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/history"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
)

// JobID names the (human segment, robot segment) pair a look-ahead job
// walks forward.
type JobID struct {
	Human        string
	HumanSegment int
	Robot        string
	RobotSegment int
}

// LookAheadJob walks a robot's forward history against a fixed human
// sample, maintaining a barrier sequence and the mode trace predicted
// to lead to it. A job with a nil HumanSample is asleep: it has no
// human data recent enough to walk against yet.
type LookAheadJob struct {
	ID           JobID
	InitialTime  uint64
	SnapshotTime uint64
	HumanSample  *body.Sample
	Trace        mode.Trace

	// NextIndex is the first not-yet-walked index into the robot's
	// samples for the job's current mode presence.
	NextIndex int

	section *barrier.SphereMinimumDistanceBarrierSequenceSection
}

// IsAsleep reports whether the job still lacks a human sample to walk
// against.
func (j LookAheadJob) IsAsleep() bool { return j.HumanSample == nil }

// CheckAndUpdate folds a robot sample into the job's barrier sequence.
// It is a no-op returning true for an asleep job.
func (j *LookAheadJob) CheckAndUpdate(r *body.Sample, key barrier.PathKey) bool {
	if j.section == nil {
		return true
	}
	return j.section.CheckAndUpdate(r, key)
}

// LastBarrier exposes the job's most recent barrier, if any.
func (j *LookAheadJob) LastBarrier() (barrier.Barrier, bool) {
	if j.section == nil {
		return barrier.Barrier{}, false
	}
	return j.section.LastBarrier()
}

// JobAwakeningResult classifies how Awaken changed a sleeping job: Same
// means the job should stay parked awaiting more data, Different means
// it now has fresh data and should move to the waiting (active) queue.
type JobAwakeningResult int

const (
	JobAwakeningSame JobAwakeningResult = iota
	JobAwakeningDifferent
)

// AwokenJob pairs a (possibly new, branch-predicted) job with the
// verdict on whether it should move to the waiting queue.
type AwokenJob struct {
	Job    LookAheadJob
	Result JobAwakeningResult
}

// JobFactory creates and reawakens look-ahead jobs. The default
// implementation is DefaultJobFactory; alternate implementations can
// substitute different barrier strategies or prediction policies.
type JobFactory interface {
	CreateNewJob(id JobID, snapshotTime uint64, humanSample *body.Sample, trace mode.Trace) LookAheadJob
	Awaken(job LookAheadJob, newTimestamp uint64, humanSample *body.Sample, robotHistory *history.RobotStateHistory) []AwokenJob
}

// DefaultJobFactory builds jobs backed by
// barrier.SphereMinimumDistanceBarrierSequenceSection and branches a
// sleeping job's mode trace using mode.Trace.NextModes on awakening.
type DefaultJobFactory struct{}

// CreateNewJob starts a job for id. If humanSample is nil the job
// starts asleep.
func (DefaultJobFactory) CreateNewJob(id JobID, snapshotTime uint64, humanSample *body.Sample, trace mode.Trace) LookAheadJob {
	job := LookAheadJob{
		ID:           id,
		InitialTime:  snapshotTime,
		SnapshotTime: snapshotTime,
		HumanSample:  humanSample,
		Trace:        trace,
	}
	if humanSample != nil {
		job.section = barrier.NewSphereMinimumDistanceBarrierSequenceSection(humanSample)
	}
	return job
}

// Awaken supplies a sleeping job with a fresh human sample. When the
// job's trace has no pattern-matched successor prediction, the job
// takes the new sample, keeps any barrier section it already has, and
// is returned marked Same. When predictions exist, one branch job is
// produced per predicted mode, each with the predicted mode appended
// to its trace and a fresh barrier section; the most likely is marked
// Same and the rest marked Different (new alternate futures worth
// actively tracking).
func (DefaultJobFactory) Awaken(job LookAheadJob, newTimestamp uint64, humanSample *body.Sample, robotHistory *history.RobotStateHistory) []AwokenJob {
	predictions := job.Trace.NextModes()
	if len(predictions) == 0 {
		woken := job
		woken.HumanSample = humanSample
		woken.SnapshotTime = newTimestamp
		if woken.section == nil {
			woken.section = barrier.NewSphereMinimumDistanceBarrierSequenceSection(humanSample)
		}
		return []AwokenJob{{Job: woken, Result: JobAwakeningSame}}
	}

	best := 0
	for i, p := range predictions {
		if p.Probability > predictions[best].Probability {
			best = i
		}
	}

	out := make([]AwokenJob, 0, len(predictions))
	for i, p := range predictions {
		woken := job
		woken.Trace = job.Trace.PushBack(p.Mode, p.Probability)
		woken.HumanSample = humanSample
		woken.SnapshotTime = newTimestamp
		woken.section = barrier.NewSphereMinimumDistanceBarrierSequenceSection(humanSample)
		result := JobAwakeningDifferent
		if i == best {
			result = JobAwakeningSame
		}
		out = append(out, AwokenJob{Job: woken, Result: result})
	}
	return out
}

var _ JobFactory = DefaultJobFactory{}
