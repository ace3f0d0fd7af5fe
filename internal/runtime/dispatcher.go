package runtime

import (
	"context"
	"log"
	"sync"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"github.com/elektrokombinacija/cobot-guard/internal/history"
	"github.com/elektrokombinacija/cobot-guard/internal/mode"
)

// BrokerAccess is the transport-agnostic publish/subscribe surface the
// dispatcher and sender depend on. internal/broker and
// internal/netbroker provide concrete implementations.
type BrokerAccess interface {
	SubscribeBodyPresentation(func(BodyPresentationMessage)) (unsubscribe func())
	SubscribeHumanState(func(HumanStateMessage)) (unsubscribe func())
	SubscribeRobotState(func(RobotStateMessage)) (unsubscribe func())
	PublishCollisionNotification(CollisionNotificationMessage)
}

// Dispatcher is the runtime receiver: it subscribes to the three
// inbound topics, maintains the body registry, the pending
// human/robot pair list, and the sleeping/waiting job queues.
type Dispatcher struct {
	factory              JobFactory
	historyRetentionMS   uint64
	historyPurgePeriodMS uint64
	humanRetentionMS     uint64
	defaultHumanSegments []body.Segment

	registry *BodyRegistry

	WaitingJobs  *SynchronisedQueue[LookAheadJob]
	sleepingJobs *SynchronisedQueue[LookAheadJob]

	pairsMu sync.Mutex
	pairs   []HumanRobotIDPair

	broker      BrokerAccess
	unsubscribe []func()
}

// DispatcherConfig bundles the dispatcher's retention and default-body
// tunables.
type DispatcherConfig struct {
	Factory                  JobFactory
	HistoryRetentionMS       uint64
	HistoryPurgePeriodMS     uint64
	HumanRetentionTimeoutMS  uint64
	DefaultHumanSegments     []body.Segment
}

// NewDispatcher wires a dispatcher to broker, subscribing immediately.
func NewDispatcher(broker BrokerAccess, registry *BodyRegistry, cfg DispatcherConfig) *Dispatcher {
	if cfg.Factory == nil {
		cfg.Factory = DefaultJobFactory{}
	}
	d := &Dispatcher{
		factory:              cfg.Factory,
		historyRetentionMS:   cfg.HistoryRetentionMS,
		historyPurgePeriodMS: cfg.HistoryPurgePeriodMS,
		humanRetentionMS:     cfg.HumanRetentionTimeoutMS,
		defaultHumanSegments: cfg.DefaultHumanSegments,
		registry:             registry,
		WaitingJobs:          NewSynchronisedQueue[LookAheadJob](),
		sleepingJobs:         NewSynchronisedQueue[LookAheadJob](),
		broker:               broker,
	}

	d.unsubscribe = append(d.unsubscribe, broker.SubscribeBodyPresentation(d.onBodyPresentation))
	d.unsubscribe = append(d.unsubscribe, broker.SubscribeHumanState(d.onHumanState))
	d.unsubscribe = append(d.unsubscribe, broker.SubscribeRobotState(d.onRobotState))
	return d
}

// Registry returns the dispatcher's body registry.
func (d *Dispatcher) Registry() *BodyRegistry { return d.registry }

// SleepingJobs returns the dispatcher's sleeping-job queue, used by the
// worker pool to park jobs that ran out of fresh robot samples.
func (d *Dispatcher) SleepingJobs() *SynchronisedQueue[LookAheadJob] { return d.sleepingJobs }

// Close unsubscribes from every topic.
func (d *Dispatcher) Close() {
	for _, fn := range d.unsubscribe {
		fn()
	}
}

func (d *Dispatcher) onBodyPresentation(msg BodyPresentationMessage) {
	if d.registry.Contains(msg.ID) {
		return
	}
	log.Printf("[INFO] runtime: registering body %s", msg.ID)

	d.pairsMu.Lock()
	if msg.IsHuman {
		for _, rid := range d.registry.RobotIDs() {
			d.pairs = append(d.pairs, HumanRobotIDPair{Human: msg.ID, Robot: rid})
		}
	} else {
		for _, hid := range d.registry.HumanIDs() {
			d.pairs = append(d.pairs, HumanRobotIDPair{Human: hid, Robot: msg.ID})
		}
	}
	d.pairsMu.Unlock()

	d.registry.Insert(msg)
}

func keypointObservations(f KeypointFrame) history.KeypointObservations {
	return history.KeypointObservations(f)
}

func (d *Dispatcher) onHumanState(msg HumanStateMessage) {
	for id, frame := range msg.Bodies {
		if d.registry.Contains(id) {
			log.Printf("[DEBUG] runtime: human state for %s at %d", id, msg.Timestamp)
		} else {
			log.Printf("[DEBUG] runtime: human state for unknown %s at %d, registering default human", id, msg.Timestamp)
			d.pairsMu.Lock()
			for _, rid := range d.registry.RobotIDs() {
				d.pairs = append(d.pairs, HumanRobotIDPair{Human: id, Robot: rid})
			}
			d.pairsMu.Unlock()
			d.registry.InsertDefaultHuman(id, d.defaultHumanSegments)
		}
		if err := d.registry.AcquireHumanState(id, keypointObservations(frame), msg.Timestamp); err != nil {
			log.Printf("[WARN] runtime: discarding human state for %s: %v", id, err)
			continue
		}
		d.registry.RemoveOldHumanHistory(id, msg.Timestamp, d.historyRetentionMS, d.historyPurgePeriodMS)
	}
	d.removeUnrespondingHumans(msg.Timestamp)
	d.moveSleepingJobsToWaitingJobs()
	d.promotePairsToJobs()
}

func (d *Dispatcher) onRobotState(msg RobotStateMessage) {
	if !d.registry.Contains(msg.ID) {
		log.Printf("[DEBUG] runtime: discarded robot state for unregistered %s", msg.ID)
		return
	}
	m := mode.New(msg.Mode)
	if err := d.registry.AcquireRobotState(msg.ID, m, keypointObservations(msg.Observations), msg.Timestamp); err != nil {
		log.Printf("[WARN] runtime: discarding robot state for %s: %v", msg.ID, err)
		return
	}
	d.registry.RemoveOldRobotHistory(msg.ID, msg.Timestamp, d.historyRetentionMS, d.historyPurgePeriodMS)
	d.removeUnrespondingHumans(msg.Timestamp)
	d.moveSleepingJobsToWaitingJobs()
	d.promotePairsToJobs()
}

func (d *Dispatcher) promotePairsToJobs() {
	d.pairsMu.Lock()
	pending := d.pairs
	d.pairs = nil
	d.pairsMu.Unlock()

	var stillPending []HumanRobotIDPair
	for _, p := range pending {
		robotHistory, err := d.registry.RobotHistory(p.Robot)
		if err != nil {
			stillPending = append(stillPending, p)
			continue
		}
		robotLatest, err := robotHistory.LatestTime()
		if err != nil {
			stillPending = append(stillPending, p)
			continue
		}
		if !d.registry.HasHumanInstancesWithin(p.Human, robotLatest) {
			stillPending = append(stillPending, p)
			continue
		}
		instance, err := d.registry.LatestHumanInstanceWithin(p.Human, robotLatest)
		if err != nil {
			stillPending = append(stillPending, p)
			continue
		}
		snap := robotHistory.SnapshotAt(instance.Timestamp)
		if !snap.CanLookAhead() {
			stillPending = append(stillPending, p)
			continue
		}

		human, errH := d.registry.Human(p.Human)
		robot, errR := d.registry.Robot(p.Robot)
		m, errM := robotHistory.ModeAt(instance.Timestamp)
		if errH != nil || errR != nil || errM != nil {
			stillPending = append(stillPending, p)
			continue
		}

		count := 0
		for hi := range human.SegmentList {
			for ri := range robot.SegmentList {
				id := JobID{Human: human.ID(), HumanSegment: hi, Robot: robot.ID(), RobotSegment: ri}
				var hs *body.Sample
				if hi < len(instance.Samples) {
					hs = instance.Samples[hi]
				}
				trace := mode.Trace{}.PushBackDefault(m)
				job := d.factory.CreateNewJob(id, instance.Timestamp, hs, trace)
				if job.IsAsleep() {
					d.sleepingJobs.Enqueue(job)
				} else {
					d.WaitingJobs.Enqueue(job)
				}
				count++
			}
		}
		log.Printf("[INFO] runtime: pair {%s,%s} inserted as %d jobs at %d", human.ID(), robot.ID(), count, instance.Timestamp)
	}
	d.pairsMu.Lock()
	d.pairs = append(d.pairs, stillPending...)
	d.pairsMu.Unlock()
}

func (d *Dispatcher) removeUnrespondingHumans(latestMsgTimestamp uint64) {
	var removed []string
	for _, hid := range d.registry.HumanIDs() {
		if d.registry.HumanHistorySize(hid) == 0 {
			continue
		}
		latest, err := d.registry.LatestHumanTimestamp(hid)
		if err != nil {
			continue
		}
		if latestMsgTimestamp > latest && latestMsgTimestamp-latest > d.humanRetentionMS {
			d.registry.Remove(hid)
			log.Printf("[INFO] runtime: removed human %s (no state for %dms)", hid, d.humanRetentionMS)
			removed = append(removed, hid)
		}
	}
	if len(removed) == 0 {
		return
	}

	isRemoved := func(id string) bool {
		for _, r := range removed {
			if r == id {
				return true
			}
		}
		return false
	}

	d.pairsMu.Lock()
	var kept []HumanRobotIDPair
	for _, p := range d.pairs {
		if !isRemoved(p.Human) {
			kept = append(kept, p)
		}
	}
	d.pairs = kept
	d.pairsMu.Unlock()

	var survivors []LookAheadJob
	for _, job := range d.sleepingJobs.DequeueAll() {
		if !isRemoved(job.ID.Human) {
			survivors = append(survivors, job)
		}
	}
	for _, job := range survivors {
		d.sleepingJobs.Enqueue(job)
	}
}

func (d *Dispatcher) moveSleepingJobsToWaitingJobs() {
	for _, job := range d.sleepingJobs.DequeueAll() {
		robotHistory, err := d.registry.RobotHistory(job.ID.Robot)
		if err != nil {
			d.sleepingJobs.Enqueue(job)
			continue
		}
		robotLatest, err := robotHistory.LatestTime()
		if err != nil {
			d.sleepingJobs.Enqueue(job)
			continue
		}
		instance, err := d.registry.LatestHumanInstanceWithin(job.ID.Human, robotLatest)
		if err != nil {
			d.sleepingJobs.Enqueue(job)
			continue
		}
		distance, err := d.registry.InstanceDistance(job.ID.Human, job.InitialTime, instance.Timestamp)
		if err != nil {
			d.sleepingJobs.Enqueue(job)
			continue
		}
		snap := robotHistory.SnapshotAt(job.SnapshotTime)
		if distance == 0 || !snap.CanLookAhead() {
			d.sleepingJobs.Enqueue(job)
			continue
		}

		var hs *body.Sample
		if job.ID.HumanSegment < len(instance.Samples) {
			hs = instance.Samples[job.ID.HumanSegment]
		}
		for _, wj := range d.factory.Awaken(job, instance.Timestamp, hs, robotHistory) {
			if wj.Result == JobAwakeningDifferent {
				d.WaitingJobs.Enqueue(wj.Job)
			} else {
				d.sleepingJobs.Enqueue(wj.Job)
			}
		}
	}
}

// Run blocks until ctx is cancelled, then unsubscribes.
func (d *Dispatcher) Run(ctx context.Context) {
	<-ctx.Done()
	d.Close()
}
