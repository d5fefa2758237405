// FILE: lixenwraith/logship/batch.go
package logship

import (
	"sync"
)

// Batch is the ordered set of records awaiting transmission.
// Records are only ever added at the tail and removed from the head, and only
// after the head has been confirmed delivered. Records appended while a send
// is outstanding stay behind the drained prefix.
type Batch struct {
	mu      sync.Mutex
	records []Record
}

// NewBatch creates an empty batch with the given initial capacity
func NewBatch(capacity int) *Batch {
	if capacity < 0 {
		capacity = 0
	}
	return &Batch{records: make([]Record, 0, capacity)}
}

// Append adds a record to the tail and returns the new size
func (b *Batch) Append(r Record) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, r)
	return len(b.records)
}

// Size returns the number of pending records
func (b *Batch) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Snapshot returns the pending records in order.
// The returned slice is a read-only view capped at the current length, later
// appends never show through it and Drain never mutates it.
func (b *Batch) Snapshot() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.records[:len(b.records):len(b.records)]
}

// Drain removes the first count records, clamped to the current size.
// It returns the number of records actually removed.
func (b *Batch) Drain(count int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if count <= 0 {
		return 0
	}
	if count > len(b.records) {
		count = len(b.records)
	}

	// Copy the tail into a fresh slice so outstanding snapshots keep their view
	remaining := make([]Record, len(b.records)-count, cap(b.records))
	copy(remaining, b.records[count:])
	b.records = remaining
	return count
}
