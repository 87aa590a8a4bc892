package wsched

import (
	"math/rand"
	"runtime"

	"github.com/coreforge/wsched/internal/obs"
)

// spinIterations bounds how many times a worker yields the CPU before
// parking, per spec §4.D step 3. Kept small and not configurable: the
// point is to absorb brief bursts without ever busy-spinning indefinitely
// in the steady-state-idle case (see spec §8's boundary behaviours).
const spinIterations = 64

// worker owns exactly one deque index and runs the pop / steal / spin /
// park state machine (spec §4.D). It holds a non-owning back-reference to
// its Scheduler so it can observe the running flag and the wakeup
// condition; the Scheduler outlives every worker by construction (joined
// in Stop before Destroy).
type worker struct {
	index int
	deque *Deque
	sched *Scheduler
	rng   *rand.Rand
	log   obs.Logger
}

func newWorker(index int, sched *Scheduler) *worker {
	return &worker{
		index: index,
		deque: sched.deques[index],
		sched: sched,
		rng:   rand.New(rand.NewSource(int64(index) + 1)),
		log:   sched.log.With("worker", index),
	}
}

// run is the worker's entire lifetime: it returns exactly once, when the
// scheduler's running flag has gone false and this worker has confirmed
// there is no task it picked up moments before that flag flipped.
func (w *worker) run() {
	defer w.sched.workersWG.Done()
	w.log.Debug("worker started")

	for {
		if !w.sched.running.Load() {
			w.log.Debug("worker exiting")
			return
		}

		if t, ok := w.deque.Pop(); ok {
			w.finish(t)
			continue
		}

		if t, ok := w.stealSweep(); ok {
			w.finish(t)
			continue
		}

		t, ok := w.spinThenPark()
		if !ok {
			w.log.Debug("worker exiting")
			return
		}
		w.finish(t)
	}
}

// finish executes a dequeued task to completion and releases the
// scheduler's bookkeeping for it.
func (w *worker) finish(t *taskRecord) {
	t.execute()
	w.sched.registry.remove(t.id)
	w.sched.tasksCompleted.Add(1)
}

// stealSweep attempts up to N-1 steals against uniformly chosen victims
// other than this worker's own deque, bounding the sweep so a globally
// idle scheduler never live-locks (spec §4.D, "Victim selection").
func (w *worker) stealSweep() (*taskRecord, bool) {
	n := len(w.sched.deques)
	if n <= 1 {
		return nil, false
	}
	for i := 0; i < n-1; i++ {
		victim := w.randomVictim(n)
		if t, ok := w.sched.deques[victim].Steal(); ok {
			return t, true
		}
	}
	return nil, false
}

// randomVictim picks uniformly from {0..n-1} \ {w.index}.
func (w *worker) randomVictim(n int) int {
	v := w.rng.Intn(n - 1)
	if v >= w.index {
		v++
	}
	return v
}

// spinThenPark implements spec §4.D step 3: a bounded spin through the full
// pop -> steal-sweep sequence, then parking under the scheduler's wakeup
// mutex with a re-check of the local deque performed while still holding
// that mutex (steps 3b-3c) — the double check that closes the lost-wakeup
// race between "queues empty" and "submitter pushes and signals" (spec
// §4.D, §9).
//
// Submit signals an arbitrary parked worker, not necessarily the owner of
// the deque the new task landed on (every worker shares one wakeupCond). So
// on every wake this does a local pop and then one steal attempt against
// every peer deque before parking again (step 3e), rather than only
// rechecking this worker's own deque or sampling random victims; otherwise a
// wake delivered to the wrong worker could re-park while the task sits
// unclaimed.
//
// Returns ok=false only when the scheduler has stopped and this worker
// must exit.
func (w *worker) spinThenPark() (t *taskRecord, ok bool) {
	for i := 0; i < spinIterations; i++ {
		runtime.Gosched()
		if !w.sched.running.Load() {
			return nil, false
		}
		if t, found := w.deque.Pop(); found {
			return t, true
		}
		if t, found := w.stealSweep(); found {
			return t, true
		}
	}

	for {
		w.sched.wakeupMu.Lock()
		if !w.sched.running.Load() {
			w.sched.wakeupMu.Unlock()
			return nil, false
		}
		if t, found := w.deque.Pop(); found {
			w.sched.wakeupMu.Unlock()
			return t, true
		}
		w.log.Debug("worker parking")
		w.sched.wakeupCond.Wait()
		w.sched.wakeupMu.Unlock()

		// Woken: release the mutex, pop locally, then try every peer deque
		// once before parking again (spec §4.D step 3e).
		if t, found := w.deque.Pop(); found {
			return t, true
		}
		for i, d := range w.sched.deques {
			if i == w.index {
				continue
			}
			if t, found := d.Steal(); found {
				return t, true
			}
		}
	}
}
