package metrics

import "sync"

// atomicCounterSet is a small fixed-cardinality counter map keyed by any
// comparable label type (event.Type, RejectReason). The label sets here
// are tiny and bounded, so a mutex-guarded map is simpler than lock-free
// alternatives and never becomes a contention point.
type atomicCounterSet[K comparable] struct {
	mu     *sync.Mutex
	counts map[K]uint64
}

func newAtomicCounterSet[K comparable]() atomicCounterSet[K] {
	return atomicCounterSet[K]{mu: &sync.Mutex{}, counts: make(map[K]uint64)}
}

func (s atomicCounterSet[K]) inc(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
}

func (s atomicCounterSet[K]) snapshot(stringify func(K) string) map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint64, len(s.counts))
	for k, v := range s.counts {
		out[stringify(k)] = v
	}
	return out
}
