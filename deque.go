package wsched

import (
	"sync/atomic"

	"github.com/coreforge/wsched/internal/ring"
)

// cacheLinePadding separates the owner's bottom index from the stealers'
// top index onto distinct cache lines, avoiding false sharing between the
// owner thread (which writes bottom on every push/pop) and stealers
// (which write top on every successful steal).
const cacheLinePadding = 64

// nextPow2 rounds n up to the next power of two (n itself if already one).
func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	x := uint64(n - 1)
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return int(x + 1)
}

// dequeBuffer is one generation of a Deque's backing ring. A Deque may
// point at several dequeBuffers over its lifetime (one per grow); old ones
// are retired, not freed, because a stealer may still be mid-read against
// one (see spec §4.A).
type dequeBuffer struct {
	mask  uint64
	slots []*taskRecord
}

func newDequeBuffer(capacity uint64) *dequeBuffer {
	return &dequeBuffer{mask: capacity - 1, slots: make([]*taskRecord, capacity)}
}

func (b *dequeBuffer) capacity() uint64 { return b.mask + 1 }

func (b *dequeBuffer) get(i uint64) *taskRecord { return b.slots[i&b.mask] }

func (b *dequeBuffer) put(i uint64, t *taskRecord) { b.slots[i&b.mask] = t }

// grow returns a new, double-capacity buffer holding the live entries
// [oldTop, oldBottom), copied in index order.
func (b *dequeBuffer) grow(oldTop, oldBottom uint64) *dequeBuffer {
	nb := newDequeBuffer(b.capacity() * 2)
	for i := oldTop; i != oldBottom; i++ {
		nb.put(i, b.get(i))
	}
	return nb
}

// Deque is a lock-free Chase-Lev work-stealing deque of task records.
// Exactly one goroutine — the owner — may call Push or Pop. Any goroutine,
// including the owner, may call Steal. See spec §4.A for the full
// algorithm and the memory-ordering rationale; the sequentially-consistent
// operations below are the single shared decision point at top == bottom.
type Deque struct {
	buf atomic.Pointer[dequeBuffer]
	_   [cacheLinePadding]byte
	top atomic.Uint64
	_   [cacheLinePadding]byte
	bottom atomic.Uint64

	// retired holds buffers this deque has outgrown, so Scheduler.Destroy
	// can reclaim them in bulk once no stealer can still be reading one.
	retired *ring.Bag
}

// retiredBagCapacity bounds how many outgrown buffers a single deque will
// remember for explicit reclamation before falling back to ordinary GC
// retention (the degraded mode spec §4.A explicitly allows).
const retiredBagCapacity = 32

// NewDeque creates a deque with at least the requested initial capacity,
// rounded up to a power of two.
func NewDeque(capacity int) *Deque {
	cap := uint64(nextPow2(capacity))
	d := &Deque{retired: ring.New(retiredBagCapacity)}
	d.buf.Store(newDequeBuffer(cap))
	return d
}

// Push adds a task at the bottom (owner only). Grows the backing buffer if
// full.
func (d *Deque) Push(t *taskRecord) {
	b := d.bottom.Load()
	top := d.top.Load()
	buf := d.buf.Load()

	if b-top >= buf.capacity() {
		grown := buf.grow(top, b)
		d.buf.Store(grown)
		d.retired.Push(buf)
		buf = grown
	}

	buf.put(b, t)
	d.bottom.Store(b + 1)
}

// Pop removes and returns the most recently pushed task (owner only).
// Returns false if the deque is empty or a concurrent steal won the race
// for the last element.
func (d *Deque) Pop() (*taskRecord, bool) {
	b := d.bottom.Load()
	if b == 0 {
		// Nothing was ever pushed (top <= bottom == 0); decrementing would
		// wrap the unsigned index around.
		return nil, false
	}
	b--
	d.bottom.Store(b)

	buf := d.buf.Load()
	top := d.top.Load()

	if top < b {
		return buf.get(b), true
	}

	if top == b {
		if d.top.CompareAndSwap(top, top+1) {
			d.bottom.Store(top + 1)
			return buf.get(b), true
		}
		d.bottom.Store(top + 1)
		return nil, false
	}

	// top > b: already empty.
	d.bottom.Store(top)
	return nil, false
}

// Steal removes and returns the oldest task (any goroutine). Returns false
// if the deque is empty or a concurrent steal/pop won the race.
func (d *Deque) Steal() (*taskRecord, bool) {
	top := d.top.Load()
	bottom := d.bottom.Load()
	if top >= bottom {
		return nil, false
	}

	buf := d.buf.Load()
	t := buf.get(top)

	if !d.top.CompareAndSwap(top, top+1) {
		return nil, false
	}
	return t, true
}

// Len reports the deque's approximate logical size. Safe to call from any
// goroutine; may be stale the instant it returns.
func (d *Deque) Len() int {
	b := d.bottom.Load()
	t := d.top.Load()
	if b <= t {
		return 0
	}
	return int(b - t)
}

// Reclaim frees every buffer this deque has outgrown. Only safe once the
// caller has guaranteed no stealer can still be reading this deque (e.g.
// after Scheduler.Stop has joined every worker). Returns how many buffers
// were reclaimed.
func (d *Deque) Reclaim() int {
	return len(d.retired.Drain())
}
