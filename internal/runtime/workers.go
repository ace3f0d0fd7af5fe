package runtime

import (
	"context"
	"log"

	"github.com/elektrokombinacija/cobot-guard/internal/barrier"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// WorkerPool drains the waiting-jobs queue with a bounded set of
// goroutines, each walking its job's robot history forward through
// internal/barrier and emitting collision notifications through
// sender on contact. Jobs that run out of fresh robot samples are
// parked back on the dispatcher's sleeping queue to be woken by the
// next state message, rather than busy-looping.
type WorkerPool struct {
	dispatcher *Dispatcher
	sender     *Sender
	size       int
}

// NewWorkerPool returns a pool of size job-processor goroutines.
func NewWorkerPool(d *Dispatcher, sender *Sender, size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{dispatcher: d, sender: sender, size: size}
}

// Run starts the pool and blocks until ctx is cancelled or a worker
// returns an unrecoverable error.
func (p *WorkerPool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		g.Go(func() error {
			p.loop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (p *WorkerPool) loop(ctx context.Context) {
	queue := p.dispatcher.WaitingJobs
	for {
		done := make(chan struct{})
		go func() {
			queue.Reserve()
			close(done)
		}()
		select {
		case <-ctx.Done():
			return
		case <-done:
		}

		job, ok := queue.Dequeue()
		if !ok {
			continue
		}
		p.process(job)
	}
}

func (p *WorkerPool) process(job LookAheadJob) {
	registry := p.dispatcher.Registry()
	robotHistory, err := registry.RobotHistory(job.ID.Robot)
	if err != nil {
		return
	}
	robotLatest, err := robotHistory.LatestTime()
	if err != nil {
		return
	}
	snap := robotHistory.SnapshotAt(robotLatest)
	m, err := robotHistory.ModeAt(robotLatest)
	if err != nil {
		p.dispatcher.SleepingJobs().Enqueue(job)
		return
	}
	perSegment, err := snap.Samples(m)
	if err != nil || job.ID.RobotSegment >= len(perSegment) {
		p.dispatcher.SleepingJobs().Enqueue(job)
		return
	}
	samples := perSegment[job.ID.RobotSegment]

	if job.NextIndex >= len(samples) {
		p.dispatcher.SleepingJobs().Enqueue(job)
		return
	}

	for i := job.NextIndex; i < len(samples); i++ {
		ok := job.CheckAndUpdate(samples[i], barrier.PathKey{PathID: 0, Index: i})
		job.NextIndex = i + 1
		if !ok {
			p.notifyContact(job, i)
			return
		}
	}
	p.dispatcher.SleepingJobs().Enqueue(job)
}

func (p *WorkerPool) notifyContact(job LookAheadJob, atIndex int) {
	last, ok := job.LastBarrier()
	from, to := job.SnapshotTime, job.SnapshotTime
	if ok {
		from, to = uint64(last.Range.MinimumSampleIndex()), uint64(last.Range.MaximumSampleIndex())
	}
	var m map[string]string
	if job.Trace.Size() > 0 {
		m = job.Trace.At(job.Trace.Size() - 1).Mode.Values()
	}
	msg := CollisionNotificationMessage{
		NotificationID: uuid.New().String()[:8],
		HumanID:        job.ID.Human,
		HumanSegment:   job.ID.HumanSegment,
		RobotID:        job.ID.Robot,
		RobotSegment:   job.ID.RobotSegment,
		FromTimestamp:  from,
		ToTimestamp:    to,
		Mode:           m,
		Likelihood:     job.Trace.Likelihood(),
	}
	log.Printf("[WARN] runtime: predicted contact %s/%d vs %s/%d at sample %d", job.ID.Human, job.ID.HumanSegment, job.ID.Robot, job.ID.RobotSegment, atIndex)
	p.sender.Enqueue(msg)
}
