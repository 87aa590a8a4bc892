// Package wsched implements a work-stealing task scheduler: a fixed-size
// pool of worker goroutines, each owning a lock-free Chase-Lev deque, that
// execute heterogeneous closures submitted from any goroutine.
//
// This package provides:
//   - Deque: a lock-free work-stealing deque (owner push/pop, concurrent steal)
//   - Scheduler: orchestrates N deques and N workers, exposes Submit/Start/Stop
//   - Handle: an external reference to a submitted task (Join, Poll)
//   - Stats: submission/completion counters
//
// A typical program creates a scheduler, starts it, submits closures, and
// joins the returned handles:
//
//	sched, err := wsched.Create(wsched.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := sched.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer sched.Destroy()
//
//	var counter atomic.Int64
//	handles := make([]*wsched.Handle, 100)
//	for i := range handles {
//		handles[i], _ = sched.Submit(func() {
//			counter.Add(1)
//		})
//	}
//	for _, h := range handles {
//		h.Join()
//	}
//	sched.Stop()
//
// Tasks submitted by a single goroutine are not guaranteed to execute in
// submission order; work-stealing may reorder them. See the package-level
// invariants documented on Deque, taskRecord and Scheduler for the exact
// concurrency guarantees.
package wsched
