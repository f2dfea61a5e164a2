package deletion

import (
	"sort"
	"time"
)

// PendingEntry is an item hidden from view while its deletion is outstanding.
type PendingEntry[T any] struct {
	ItemID      string
	Snapshot    T
	ScheduledAt time.Time

	seq uint64
}

// PendingSet holds the entries awaiting commit. It is not safe for concurrent
// use; the owning Coordinator serializes access.
type PendingSet[T any] struct {
	entries map[string]*PendingEntry[T]
	nextSeq uint64
}

// NewPendingSet returns an empty set.
func NewPendingSet[T any]() *PendingSet[T] {
	return &PendingSet[T]{entries: make(map[string]*PendingEntry[T])}
}

// Add inserts or replaces the entry for id. The new entry orders after every
// existing one.
func (p *PendingSet[T]) Add(id string, snapshot T, at time.Time) *PendingEntry[T] {
	p.nextSeq++
	e := &PendingEntry[T]{ItemID: id, Snapshot: snapshot, ScheduledAt: at, seq: p.nextSeq}
	p.entries[id] = e
	return e
}

// Get returns the entry for id.
func (p *PendingSet[T]) Get(id string) (*PendingEntry[T], bool) {
	e, ok := p.entries[id]
	return e, ok
}

// Contains reports whether id is pending.
func (p *PendingSet[T]) Contains(id string) bool {
	_, ok := p.entries[id]
	return ok
}

// Remove drops id and returns the entry that was removed.
func (p *PendingSet[T]) Remove(id string) (*PendingEntry[T], bool) {
	e, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	return e, ok
}

// removeEntry drops e only if it is still the live entry for its id. A
// commit that finishes after the same id was deleted again must not remove
// the newer entry.
func (p *PendingSet[T]) removeEntry(e *PendingEntry[T]) bool {
	if cur, ok := p.entries[e.ItemID]; ok && cur == e {
		delete(p.entries, e.ItemID)
		return true
	}
	return false
}

// Len returns the number of pending entries.
func (p *PendingSet[T]) Len() int { return len(p.entries) }

// IDs returns the pending ids, oldest first.
func (p *PendingSet[T]) IDs() []string {
	ordered := make([]*PendingEntry[T], 0, len(p.entries))
	for _, e := range p.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	ids := make([]string, len(ordered))
	for i, e := range ordered {
		ids[i] = e.ItemID
	}
	return ids
}
