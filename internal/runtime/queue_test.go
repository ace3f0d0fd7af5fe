package runtime

import (
	"testing"
	"time"
)

func TestSynchronisedQueueEnqueueDequeue(t *testing.T) {
	q := NewSynchronisedQueue[int]()
	if q.Size() != 0 {
		t.Fatalf("expected empty queue")
	}
	q.Enqueue(1)
	q.Enqueue(2)
	if q.Size() != 2 {
		t.Fatalf("expected size 2, got %d", q.Size())
	}
	v, ok := q.Dequeue()
	if !ok || v != 1 {
		t.Fatalf("expected FIFO order, got %v ok=%v", v, ok)
	}
}

func TestSynchronisedQueueReserveBlocksUntilEnqueue(t *testing.T) {
	q := NewSynchronisedQueue[int]()
	done := make(chan struct{})
	go func() {
		q.Reserve()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Reserve returned before any item was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	q.Enqueue(42)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Reserve did not unblock after Enqueue")
	}
}

func TestSynchronisedQueueDequeueAll(t *testing.T) {
	q := NewSynchronisedQueue[int]()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)
	all := q.DequeueAll()
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if q.Size() != 0 {
		t.Fatalf("expected queue drained, got size %d", q.Size())
	}
}
