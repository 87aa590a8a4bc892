package wsched

// Handle is a lightweight external reference to a submitted task. It does
// not itself keep the task record alive — it only resolves the id against
// the owning scheduler's registry when asked to, per spec §3's Handle
// definition.
type Handle struct {
	id    uint64
	sched *Scheduler
}

// ID returns the task identifier this handle refers to.
func (h *Handle) ID() uint64 { return h.id }

// Join blocks until the task completes (or is determined cancelled). If
// the task has already completed and been reaped from the registry, Join
// returns immediately. Calling Join more than once, from one or several
// goroutines, is safe and idempotent: every call returns only after the
// task reached a terminal state.
func (h *Handle) Join() {
	t, ok := h.sched.registry.lookup(h.id)
	if !ok {
		// Already completed and reaped: nothing left to wait on.
		return
	}
	defer t.release()
	t.waitCompleted()
}

// Poll returns the task's current state, or StateUnknown if the record has
// already been reaped (which is equivalent to completed — the work is
// done, just no longer tracked).
func (h *Handle) Poll() TaskState {
	t, ok := h.sched.registry.lookup(h.id)
	if !ok {
		return StateUnknown
	}
	defer t.release()
	return TaskState(t.state.Load())
}
