package wsched

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/coreforge/wsched/internal/obs"
)

// Config configures a Scheduler, per spec §4.E.
type Config struct {
	// WorkerCount is the number of worker goroutines. Zero means
	// "auto-detect", using runtime.NumCPU().
	WorkerCount int

	// QueueCapacity is the initial capacity of each worker's deque.
	// Rounded up to the next power of two if it isn't one already.
	QueueCapacity int

	// Logger receives diagnostic events (worker start/park/exit, queue
	// capacity rounding, lifecycle transitions). Deque growth is not logged.
	// Nil means logging is disabled.
	Logger *obs.Logger
}

// DefaultConfig returns sensible defaults: auto-detected worker count and
// a 4096-slot initial deque capacity.
func DefaultConfig() Config {
	return Config{
		WorkerCount:   0,
		QueueCapacity: 4096,
	}
}

type schedState int32

const (
	stateStopped schedState = iota
	stateRunning
	stateDestroyed
)

// Scheduler orchestrates N deques and N workers and exposes the external
// submission surface (spec §4.E, §6). The zero value is not usable;
// construct with Create.
type Scheduler struct {
	config   Config
	deques   []*Deque
	workers  []*worker
	registry *registry
	log      obs.Logger

	nextID         atomic.Uint64
	tasksSubmitted atomic.Uint64
	tasksCompleted atomic.Uint64

	running atomic.Bool

	wakeupMu   sync.Mutex
	wakeupCond *sync.Cond

	lifecycleMu sync.Mutex
	state       schedState
	everStarted bool

	workersWG sync.WaitGroup
}

// Create allocates a Scheduler in the stopped state with N deques and an
// unstarted worker pool. N is config.WorkerCount, or runtime.NumCPU() if
// zero.
func Create(config Config) (*Scheduler, error) {
	log := obs.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}

	if config.WorkerCount <= 0 {
		config.WorkerCount = runtime.NumCPU()
	}
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = 4096
	}
	rounded := nextPow2(config.QueueCapacity)
	if rounded != config.QueueCapacity {
		log.Warn("queue capacity rounded up to a power of two")
	}
	config.QueueCapacity = rounded

	s := &Scheduler{
		config:   config,
		registry: newRegistry(),
		log:      log,
	}
	s.wakeupCond = sync.NewCond(&s.wakeupMu)

	s.deques = make([]*Deque, config.WorkerCount)
	for i := range s.deques {
		s.deques[i] = NewDeque(config.QueueCapacity)
	}

	return s, nil
}

// Start spawns N worker goroutines and sets the running flag. Returns
// ErrAlreadyRunning if the scheduler is not currently stopped.
func (s *Scheduler) Start() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.state != stateStopped {
		return ErrAlreadyRunning
	}

	s.state = stateRunning
	s.everStarted = true
	s.running.Store(true)

	s.workers = make([]*worker, len(s.deques))
	s.workersWG.Add(len(s.deques))
	for i := range s.deques {
		w := newWorker(i, s)
		s.workers[i] = w
		go w.run()
	}

	s.log.Info("scheduler started")
	return nil
}

// Submit constructs a task record for fn, registers it, and pushes it onto
// one deque chosen by round-robin placement (id mod N). The deque push and
// the wakeup signal happen atomically with respect to a parking worker,
// per spec §4.D's submission/wake pairing.
func (s *Scheduler) Submit(fn func()) (*Handle, error) {
	if fn == nil {
		return nil, ErrInvalidParam
	}
	if !s.running.Load() {
		s.lifecycleMu.Lock()
		started := s.everStarted
		s.lifecycleMu.Unlock()
		if !started {
			return nil, ErrNotStarted
		}
		return nil, ErrStopped
	}

	id := s.nextID.Add(1)
	t := newTaskRecord(id, fn)
	s.registry.insert(t)

	idx := int(id % uint64(len(s.deques)))

	s.wakeupMu.Lock()
	s.deques[idx].Push(t)
	s.tasksSubmitted.Add(1)
	s.wakeupCond.Signal()
	s.wakeupMu.Unlock()

	return &Handle{id: id, sched: s}, nil
}

// Stop clears the running flag, broadcasts on the wakeup condition, and
// blocks until every worker has joined. A task still sitting in a deque
// when Stop is called may be completed by a worker draining it on the way
// out, or left pending for Destroy to reap — callers must not rely on
// either outcome (spec §4.E).
func (s *Scheduler) Stop() error {
	s.lifecycleMu.Lock()
	if s.state != stateRunning {
		s.lifecycleMu.Unlock()
		return nil
	}
	s.state = stateStopped
	s.lifecycleMu.Unlock()

	s.wakeupMu.Lock()
	s.running.Store(false)
	s.wakeupCond.Broadcast()
	s.wakeupMu.Unlock()

	s.workersWG.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

// Destroy reaps every remaining task record (cancelling anything still
// pending) and reclaims every deque's retired buffers. Requires the
// scheduler to be stopped.
func (s *Scheduler) Destroy() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.state == stateRunning {
		return ErrNotStopped
	}
	if s.state == stateDestroyed {
		return nil
	}
	s.state = stateDestroyed

	s.registry.reapAll(func(t *taskRecord) {
		t.cancel()
	})

	for _, d := range s.deques {
		d.Reclaim()
	}

	s.log.Info("scheduler destroyed")
	return nil
}

// Stats returns a snapshot of submission/completion counters.
func (s *Scheduler) Stats() Stats {
	submitted := s.tasksSubmitted.Load()
	completed := s.tasksCompleted.Load()
	var pending uint64
	if submitted > completed {
		pending = submitted - completed
	}
	return Stats{
		WorkerCount:    len(s.deques),
		TasksSubmitted: submitted,
		TasksCompleted: completed,
		TasksPending:   pending,
	}
}
