// Package slots hands out indices into a fixed-size descriptor table.
package slots

// Allocator tracks which of a fixed number of slots are in use.
// Released slots are reused last-freed-first before the high-water mark
// advances. Allocator is not safe for concurrent use.
type Allocator struct {
	capacity int
	next     int
	free     []int
	used     []bool
}

// New returns an allocator for capacity slots.
func New(capacity int) *Allocator {
	if capacity < 0 {
		capacity = 0
	}
	return &Allocator{
		capacity: capacity,
		used:     make([]bool, capacity),
	}
}

// Acquire reserves a slot. ok is false when every slot is in use.
func (a *Allocator) Acquire() (slot int, ok bool) {
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if a.next >= a.capacity {
			return -1, false
		}
		slot = a.next
		a.next++
	}
	a.used[slot] = true
	return slot, true
}

// Release returns slot to the allocator. It reports false for slots that
// are out of range or not in use.
func (a *Allocator) Release(slot int) bool {
	if slot < 0 || slot >= a.capacity || !a.used[slot] {
		return false
	}
	a.used[slot] = false
	a.free = append(a.free, slot)
	return true
}

// Reset releases every slot and rewinds the high-water mark.
func (a *Allocator) Reset() {
	a.next = 0
	a.free = a.free[:0]
	clear(a.used)
}

// InUse returns the number of reserved slots.
func (a *Allocator) InUse() int {
	return a.next - len(a.free)
}

// Cap returns the slot capacity.
func (a *Allocator) Cap() int {
	return a.capacity
}
