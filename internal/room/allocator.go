package room

// sequenceAllocator is the monotonic per-room counter (spec §4.A). It is
// always driven by the Coordinator's single run loop, so it needs no
// lock of its own — serialization comes from the Coordinator.
type sequenceAllocator struct {
	counter uint64
}

func (a *sequenceAllocator) next() uint64 {
	a.counter++
	return a.counter
}

func (a *sequenceAllocator) current() uint64 {
	return a.counter
}

func (a *sequenceAllocator) reset() {
	a.counter = 0
}
