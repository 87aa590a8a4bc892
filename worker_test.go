package wsched

import (
	"testing"

	"github.com/coreforge/wsched/internal/obs"
)

func newBareScheduler(n int) *Scheduler {
	s := &Scheduler{deques: make([]*Deque, n), log: obs.Nop()}
	for i := range s.deques {
		s.deques[i] = NewDeque(8)
	}
	return s
}

func TestRandomVictimNeverPicksSelf(t *testing.T) {
	sched := newBareScheduler(4)
	w := newWorker(1, sched)

	for i := 0; i < 1000; i++ {
		v := w.randomVictim(4)
		if v == w.index {
			t.Fatalf("randomVictim returned self index %d", v)
		}
		if v < 0 || v >= 4 {
			t.Fatalf("randomVictim returned out-of-range index %d", v)
		}
	}
}

func TestStealSweepFindsTaskInAnotherDeque(t *testing.T) {
	sched := newBareScheduler(3)
	w0 := newWorker(0, sched)

	victim := taskWithID(99)
	sched.deques[2].Push(victim)

	got, ok := w0.stealSweep()
	if !ok || got.id != 99 {
		t.Fatalf("expected stealSweep to find task 99, got %v ok=%v", got, ok)
	}
}

func TestStealSweepEmptyReturnsFalse(t *testing.T) {
	sched := newBareScheduler(3)
	w0 := newWorker(0, sched)

	if _, ok := w0.stealSweep(); ok {
		t.Fatal("expected stealSweep over empty deques to fail")
	}
}

func TestStealSweepSingleWorkerNeverLoops(t *testing.T) {
	sched := newBareScheduler(1)
	w0 := newWorker(0, sched)

	if _, ok := w0.stealSweep(); ok {
		t.Fatal("a lone worker has no victims to steal from")
	}
}

// End-to-end: one worker is held inside a blocking task, so the tasks that
// round-robin placement then puts on its deque can only complete if its
// peers steal them. Joining every one of them before the busy task is
// released proves steals actually happen rather than only local pops.
func TestWorkerStealsFromBusyPeer(t *testing.T) {
	s, err := Create(Config{WorkerCount: 4, QueueCapacity: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	defer s.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	busy, err := s.Submit(func() {
		close(started)
		<-release
	})
	if err != nil {
		t.Fatal(err)
	}
	<-started // the worker running busy can no longer drain its own deque

	const n = 2000
	handles := make([]*Handle, n)
	for i := 0; i < n; i++ {
		h, err := s.Submit(func() {})
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = h
	}
	for _, h := range handles {
		h.Join()
	}
	close(release)
	busy.Join()

	stats := s.Stats()
	if stats.TasksCompleted != n+1 {
		t.Fatalf("expected %d completed, got %d", n+1, stats.TasksCompleted)
	}
}
