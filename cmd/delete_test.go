package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-links/pkg/deletion"
)

type item struct{ id, name string }

type recorder struct {
	mu      sync.Mutex
	deleted []string
	err     error
	failIDs map[string]bool
}

func (r *recorder) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.failIDs[id] {
		return errors.New("database is locked")
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func newItemCoordinator(rec *recorder) (*deletion.Coordinator[item], *deletion.ManualClock) {
	clock := deletion.NewManualClock(time.Now())
	c := deletion.NewCoordinator(deletion.Kind[item]{
		Name:        "link",
		ID:          func(i item) string { return i.id },
		DisplayName: func(i item) string { return i.name },
		Delete:      rec.Delete,
	}, deletion.WithClock(clock), deletion.WithRetry(deletion.RetryPolicy{Attempts: 1}))
	return c, clock
}

// runWindow starts undoWindow and returns a channel carrying its result.
func runWindow(c *deletion.Coordinator[item], in io.Reader, out io.Writer) <-chan error {
	done := make(chan error, 1)
	go func() { done <- undoWindow(context.Background(), c, in, out) }()
	return done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("undo window did not return")
		return nil
	}
}

func TestUndoWindowRestoresOnEnter(t *testing.T) {
	rec := &recorder{}
	c, _ := newItemCoordinator(rec)
	c.RequestDelete(item{"a1", "Alpha"})

	r, w := io.Pipe()
	defer w.Close()
	var out bytes.Buffer
	done := runWindow(c, r, &out)

	_, err := w.Write([]byte("\n"))
	require.NoError(t, err)
	require.NoError(t, waitResult(t, done))

	assert.Contains(t, out.String(), "Restored.")
	assert.Empty(t, rec.ids())
	assert.False(t, c.IsPending("a1"))
}

func TestUndoWindowExitsAfterCommit(t *testing.T) {
	rec := &recorder{}
	c, clock := newItemCoordinator(rec)
	c.RequestDelete(item{"a1", "Alpha"})

	r, w := io.Pipe()
	defer w.Close()
	done := runWindow(c, r, io.Discard)

	clock.Advance(c.Delay())
	require.NoError(t, waitResult(t, done))
	assert.Equal(t, []string{"a1"}, rec.ids())
}

func TestUndoWindowReportsFailure(t *testing.T) {
	rec := &recorder{err: errors.New("database is locked")}
	c, clock := newItemCoordinator(rec)
	c.RequestDelete(item{"a1", "Alpha"})

	r, w := io.Pipe()
	defer w.Close()
	done := runWindow(c, r, io.Discard)

	clock.Advance(c.Delay())
	err := waitResult(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Alpha")
	assert.Contains(t, err.Error(), "database is locked")
}

func TestCommitErrorsReportsEarlierFailure(t *testing.T) {
	rec := &recorder{failIDs: map[string]bool{"a1": true}}
	c, _ := newItemCoordinator(rec)
	c.RequestDelete(item{"a1", "Alpha"})
	c.RequestDelete(item{"b2", "Beta"})

	c.FlushAll()
	err := commitErrors(c)
	require.Error(t, err, "a later successful commit must not hide the failure")
	assert.Contains(t, err.Error(), "Alpha")
	assert.Equal(t, []string{"b2"}, rec.ids())
	assert.NoError(t, commitErrors(c))
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, deletion.State{}, time.Second)
	assert.Empty(t, out.String())

	printState(&out, deletion.State{Status: deletion.Visible, Message: "Link deleted", Subject: "Alpha", Undoable: true}, 5*time.Second)
	assert.Equal(t, "Link deleted: Alpha. Press Enter within 5s to undo, Ctrl-C to delete now.\n", out.String())
}
