package store

import (
	"sync"
)

type ringSlot[V any] struct {
	occupied bool
	key      uint64
	value    V
}

// RingBuffer keeps the most recent entries of a keyed history in a fixed
// number of slots. An entry lives in slot key%capacity and evicts whatever
// occupied it before.
type RingBuffer[V any] struct {
	mu    sync.RWMutex
	slots []ringSlot[V]
}

func NewRingBuffer[V any](capacity uint64) *RingBuffer[V] {
	if capacity == 0 {
		capacity = 1
	}
	return &RingBuffer[V]{slots: make([]ringSlot[V], capacity)}
}

func (r *RingBuffer[V]) Capacity() uint64 {
	return uint64(len(r.slots))
}

// SlotOf returns the slot index key maps to.
func (r *RingBuffer[V]) SlotOf(key uint64) uint64 {
	return key % uint64(len(r.slots))
}

// Insert stores value under key and reports the key it evicted, if any.
func (r *RingBuffer[V]) Insert(key uint64, value V) (evicted uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := &r.slots[r.SlotOf(key)]
	if slot.occupied && slot.key != key {
		evicted, ok = slot.key, true
	}
	*slot = ringSlot[V]{occupied: true, key: key, value: value}
	return evicted, ok
}

// Get returns the value stored under key if it has not been evicted.
func (r *RingBuffer[V]) Get(key uint64) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot := r.slots[r.SlotOf(key)]
	if !slot.occupied || slot.key != key {
		var zero V
		return zero, false
	}
	return slot.value, true
}

// Len returns the number of occupied slots.
func (r *RingBuffer[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, slot := range r.slots {
		if slot.occupied {
			n++
		}
	}
	return n
}
