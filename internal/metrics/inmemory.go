package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// StoreOp aggregates timings for one store operation.
type StoreOp struct {
	Op      string
	Count   uint64
	TotalNs int64
}

// StoreErrorCount is the number of failures of one error kind.
type StoreErrorCount struct {
	Kind  string
	Count uint64
}

// Snapshot captures current in-memory counters.
// Slices are sorted by name so exposition output is stable.
type Snapshot struct {
	FormsCreated uint64
	FormsUpdated uint64
	FormsDeleted uint64
	RateLimited  uint64
	StoreOps     []StoreOp
	StoreErrors  []StoreErrorCount
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	formsCreated uint64
	formsUpdated uint64
	formsDeleted uint64
	rateLimited  uint64

	mu          sync.Mutex
	storeOps    map[string]*StoreOp
	storeErrors map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		storeOps:    make(map[string]*StoreOp),
		storeErrors: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	snap := Snapshot{
		FormsCreated: atomic.LoadUint64(&m.formsCreated),
		FormsUpdated: atomic.LoadUint64(&m.formsUpdated),
		FormsDeleted: atomic.LoadUint64(&m.formsDeleted),
		RateLimited:  atomic.LoadUint64(&m.rateLimited),
	}

	m.mu.Lock()
	for _, op := range m.storeOps {
		snap.StoreOps = append(snap.StoreOps, *op)
	}
	for kind, count := range m.storeErrors {
		snap.StoreErrors = append(snap.StoreErrors, StoreErrorCount{Kind: kind, Count: count})
	}
	m.mu.Unlock()

	sort.Slice(snap.StoreOps, func(i, j int) bool { return snap.StoreOps[i].Op < snap.StoreOps[j].Op })
	sort.Slice(snap.StoreErrors, func(i, j int) bool { return snap.StoreErrors[i].Kind < snap.StoreErrors[j].Kind })
	return snap
}

// IncFormCreated increments form created counter.
func (m *InMemoryRecorder) IncFormCreated() {
	atomic.AddUint64(&m.formsCreated, 1)
}

// IncFormUpdated increments form updated counter.
func (m *InMemoryRecorder) IncFormUpdated() {
	atomic.AddUint64(&m.formsUpdated, 1)
}

// IncFormDeleted increments form deleted counter.
func (m *InMemoryRecorder) IncFormDeleted() {
	atomic.AddUint64(&m.formsDeleted, 1)
}

// IncRateLimited increments the rejected request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// ObserveStoreDuration records how long a store call took.
func (m *InMemoryRecorder) ObserveStoreDuration(op string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.storeOps[op]
	if !ok {
		entry = &StoreOp{Op: op}
		m.storeOps[op] = entry
	}
	entry.Count++
	entry.TotalNs += duration.Nanoseconds()
}

// IncStoreError counts a failed store call by error kind.
func (m *InMemoryRecorder) IncStoreError(kind string) {
	m.mu.Lock()
	m.storeErrors[kind]++
	m.mu.Unlock()
}
