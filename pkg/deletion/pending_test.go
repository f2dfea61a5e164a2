package deletion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingSetOrdersByInsertion(t *testing.T) {
	p := NewPendingSet[string]()
	now := time.Now()

	p.Add("2", "two", now)
	p.Add("1", "one", now)
	p.Add("3", "three", now)
	assert.Equal(t, []string{"2", "1", "3"}, p.IDs())

	p.Add("2", "two again", now)
	assert.Equal(t, []string{"1", "3", "2"}, p.IDs(), "re-adding moves an id to the end")

	e, ok := p.Remove("1")
	assert.True(t, ok)
	assert.Equal(t, "one", e.Snapshot)
	assert.Equal(t, []string{"3", "2"}, p.IDs())
}

func TestPendingSetRemoveEntryIgnoresReplaced(t *testing.T) {
	p := NewPendingSet[string]()
	old := p.Add("1", "one", time.Now())
	p.Add("1", "one again", time.Now())

	assert.False(t, p.removeEntry(old))
	assert.True(t, p.Contains("1"))
	assert.Equal(t, 1, p.Len())
}

func TestUndoerClearOnlyMatching(t *testing.T) {
	var u Undoer
	u.OnScheduled("1")
	u.OnScheduled("2")

	u.Clear("1")
	last, ok := u.Last()
	assert.True(t, ok)
	assert.Equal(t, "2", last)

	id, ok := u.Undo(func(string) bool { return false })
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = u.Undo(func(string) bool { return true })
	assert.True(t, ok)
	assert.Equal(t, "2", id)
	_, ok = u.Last()
	assert.False(t, ok)
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: 100 * time.Millisecond, Max: time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Next(tt.attempt), "attempt %d", tt.attempt)
	}
	assert.Zero(t, ExponentialBackoff{}.Next(3))
}
