package wsched

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HandleTestSuite struct {
	suite.Suite
	sched *Scheduler
}

func TestHandleTestSuite(t *testing.T) {
	suite.Run(t, new(HandleTestSuite))
}

func (hs *HandleTestSuite) SetupTest() {
	s, err := Create(Config{WorkerCount: 4, QueueCapacity: 32})
	hs.Require().NoError(err)
	hs.Require().NoError(s.Start())
	hs.sched = s
}

func (hs *HandleTestSuite) TearDownTest() {
	hs.Require().NoError(hs.sched.Stop())
	hs.Require().NoError(hs.sched.Destroy())
}

func (hs *HandleTestSuite) TestJoinWaitsForCompletion() {
	var flag atomic.Bool
	h, err := hs.sched.Submit(func() { flag.Store(true) })
	hs.Require().NoError(err)

	h.Join()
	hs.True(flag.Load())
}

func (hs *HandleTestSuite) TestJoinIsIdempotent() {
	h, err := hs.sched.Submit(func() {})
	hs.Require().NoError(err)

	h.Join()
	h.Join() // must not block or panic the second time
}

func (hs *HandleTestSuite) TestMultipleConcurrentJoiners() {
	release := make(chan struct{})
	h, err := hs.sched.Submit(func() { <-release })
	hs.Require().NoError(err)

	const joiners = 20
	var wg sync.WaitGroup
	wg.Add(joiners)
	for i := 0; i < joiners; i++ {
		go func() {
			defer wg.Done()
			h.Join()
		}()
	}

	close(release)
	wg.Wait() // every joiner must eventually return
}

func (hs *HandleTestSuite) TestPollObservesPendingOrRunningThenCompleted() {
	release := make(chan struct{})
	h, err := hs.sched.Submit(func() { <-release })
	hs.Require().NoError(err)

	state := h.Poll()
	hs.True(state == StatePending || state == StateRunning)

	close(release)
	h.Join()

	state = h.Poll()
	hs.True(state == StateCompleted || state == StateUnknown)
}

func (hs *HandleTestSuite) TestIDMatchesSubmissionOrder() {
	h1, err := hs.sched.Submit(func() {})
	hs.Require().NoError(err)
	h2, err := hs.sched.Submit(func() {})
	hs.Require().NoError(err)

	hs.Less(h1.ID(), h2.ID())
}

func (hs *HandleTestSuite) TestJoinAfterAlreadyReapedReturnsImmediately() {
	h, err := hs.sched.Submit(func() {})
	hs.Require().NoError(err)

	h.Join() // task finishes and is deregistered by the worker

	done := make(chan struct{})
	go func() {
		h.Join() // registry lookup now misses; must return without blocking
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		hs.Fail("second Join on an already-reaped task did not return promptly")
	}
}
