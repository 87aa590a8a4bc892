package wsched

import "testing"

func TestRegistryInsertLookupRemove(t *testing.T) {
	r := newRegistry()
	tr := newTaskRecord(7, func() {})
	r.insert(tr)

	if r.len() != 1 {
		t.Fatalf("expected len 1 after insert, got %d", r.len())
	}

	got, ok := r.lookup(7)
	if !ok || got != tr {
		t.Fatalf("expected lookup to find the inserted record")
	}
	if got.refcount.Load() != 2 {
		t.Fatalf("expected lookup to increment refcount to 2, got %d", got.refcount.Load())
	}
	got.release() // undo the lookup's addRef for this test

	r.remove(7)
	if r.len() != 0 {
		t.Fatalf("expected len 0 after remove, got %d", r.len())
	}
	if tr.refcount.Load() != 0 {
		t.Fatalf("expected refcount 0 after remove released the registry's reference, got %d", tr.refcount.Load())
	}

	if _, ok := r.lookup(7); ok {
		t.Fatal("expected lookup after remove to miss")
	}
}

func TestRegistryReapAll(t *testing.T) {
	r := newRegistry()
	a := newTaskRecord(1, func() {})
	b := newTaskRecord(2, func() {})
	r.insert(a)
	r.insert(b)

	var visited []uint64
	r.reapAll(func(tr *taskRecord) {
		visited = append(visited, tr.id)
	})

	if len(visited) != 2 {
		t.Fatalf("expected reapAll to visit 2 entries, got %d", len(visited))
	}
	if r.len() != 0 {
		t.Fatalf("expected registry empty after reapAll, got len %d", r.len())
	}
}

func TestRegistryReapAllCancelsPending(t *testing.T) {
	r := newRegistry()
	tr := newTaskRecord(1, func() {})
	r.insert(tr)

	r.reapAll(func(tr *taskRecord) { tr.cancel() })

	if got := TaskState(tr.state.Load()); got != StateCancelled {
		t.Fatalf("expected reaped pending task to be cancelled, got %v", got)
	}
}
