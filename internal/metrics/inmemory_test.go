package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncFormCreated()
	m.IncFormCreated()
	m.IncFormUpdated()
	m.IncFormDeleted()
	m.IncRateLimited()

	snap := m.Snapshot()
	if snap.FormsCreated != 2 || snap.FormsUpdated != 1 || snap.FormsDeleted != 1 || snap.RateLimited != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestInMemoryRecorder_StoreMetricsSorted(t *testing.T) {
	m := NewInMemory()

	m.ObserveStoreDuration("update", 2*time.Millisecond)
	m.ObserveStoreDuration("insert", time.Millisecond)
	m.ObserveStoreDuration("insert", 3*time.Millisecond)
	m.IncStoreError("StoreTimeout")
	m.IncStoreError("NotFound")
	m.IncStoreError("NotFound")

	snap := m.Snapshot()
	if len(snap.StoreOps) != 2 || snap.StoreOps[0].Op != "insert" || snap.StoreOps[1].Op != "update" {
		t.Fatalf("unexpected ops: %+v", snap.StoreOps)
	}
	if snap.StoreOps[0].Count != 2 || snap.StoreOps[0].TotalNs != (4*time.Millisecond).Nanoseconds() {
		t.Errorf("unexpected insert aggregate: %+v", snap.StoreOps[0])
	}
	if len(snap.StoreErrors) != 2 || snap.StoreErrors[0].Kind != "NotFound" || snap.StoreErrors[0].Count != 2 {
		t.Errorf("unexpected errors: %+v", snap.StoreErrors)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncFormCreated()
			m.ObserveStoreDuration("insert", time.Microsecond)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.FormsCreated != 50 || snap.StoreOps[0].Count != 50 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncFormCreated()
	r.ObserveStoreDuration("insert", time.Second)
	r.IncStoreError("Internal")
}
