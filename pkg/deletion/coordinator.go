// Package deletion implements deferred deletion with a single-level undo.
//
// Deleting an item hides it immediately and commits the delete to storage
// after a fixed delay. Until then the most recent deletion can be undone.
// Leaving the screen flushes every outstanding deletion so nothing is lost.
package deletion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultDelay is how long a deletion stays undoable.
const DefaultDelay = 5 * time.Second

// Kind adapts an item type to the coordinator.
type Kind[T any] struct {
	// Name is the singular noun shown to the user, e.g. "link".
	Name        string
	ID          func(T) string
	DisplayName func(T) string
	// Delete removes the item from storage. It may block.
	Delete func(ctx context.Context, id string) error
}

type options struct {
	delay time.Duration
	clock Clock
	log   *logrus.Entry
	retry RetryPolicy
	ctx   context.Context
}

// Option configures a Coordinator.
type Option func(*options)

// WithDelay sets how long each deletion waits before it is committed.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithClock replaces the real clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger used for commit and failure reporting.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) { o.log = log }
}

// WithRetry sets the policy applied when a storage delete fails.
func WithRetry(p RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

// WithContext sets the context passed to storage deletes.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// CommitError reports a deletion that was abandoned after its retries.
type CommitError struct {
	Kind    string
	ID      string
	Subject string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("couldn't delete %s %s: %v", e.Kind, e.Subject, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Coordinator runs deferred deletion for one kind of item on one screen.
//
// mu guards the pending set, the undo reference and the notification as a
// single critical section. Storage deletes run outside of it.
type Coordinator[T any] struct {
	kind  Kind[T]
	delay time.Duration
	clock Clock
	log   *logrus.Entry
	retry RetryPolicy
	ctx   context.Context

	scheduler *Scheduler
	notices   *Notifications

	mu      sync.Mutex
	pending *PendingSet[T]
	undo    Undoer
	owner   string  // id whose undoable notice holds the slot, or ""
	alerts  []State // failure notices waiting for the slot
	errs    []error // abandoned commits not yet taken

	deletedMsg string
	failedMsg  string
}

// NewCoordinator builds a coordinator for kind.
func NewCoordinator[T any](kind Kind[T], opts ...Option) *Coordinator[T] {
	o := &options{
		delay: DefaultDelay,
		clock: RealClock(),
		retry: DefaultRetryPolicy(),
		ctx:   context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	log := o.log.WithField("kind", kind.Name)

	title := cases.Title(language.English).String(kind.Name)
	return &Coordinator[T]{
		kind:       kind,
		delay:      o.delay,
		clock:      o.clock,
		log:        log,
		retry:      o.retry,
		ctx:        o.ctx,
		scheduler:  NewScheduler(o.clock, log),
		notices:    NewNotifications(),
		pending:    NewPendingSet[T](),
		deletedMsg: title + " deleted",
		failedMsg:  "Couldn't delete " + strings.ToLower(kind.Name),
	}
}

// Delay returns the configured undo window.
func (c *Coordinator[T]) Delay() time.Duration { return c.delay }

// Notifications exposes the notification slot for the UI.
func (c *Coordinator[T]) Notifications() *Notifications { return c.notices }

// RequestDelete hides item and schedules its deletion. It never blocks on
// storage. Deleting an item that is already pending restarts its countdown.
func (c *Coordinator[T]) RequestDelete(item T) *Handle {
	id := c.kind.ID(item)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.pending.Add(id, item, c.clock.Now())
	h := c.scheduler.Schedule(id, c.delay, func(string) { c.commit(entry) })
	c.undo.OnScheduled(id)
	c.notices.Show(c.deletedMsg, c.kind.DisplayName(item))
	c.owner = id

	c.log.WithFields(logrus.Fields{"id": id, "deadline": h.Deadline}).Info("deletion requested")
	return h
}

// Undo restores the most recently deleted item if its timer has not fired.
// It returns the restored id, or false when there was nothing to undo.
func (c *Coordinator[T]) Undo() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.undo.Undo(func(id string) bool {
		if !c.scheduler.Cancel(id) {
			return false
		}
		c.pending.Remove(id)
		return true
	})
	if !ok {
		return "", false
	}
	if c.owner == id {
		c.releaseSlotLocked()
	}
	c.log.WithField("id", id).Info("deletion undone")
	return id, true
}

// Dismiss hides the notification, or moves on to the next failure notice
// waiting for the slot. Pending deletions keep running.
func (c *Coordinator[T]) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseSlotLocked()
}

// Flush commits the pending deletion of id now. It returns false when id was
// not pending.
func (c *Coordinator[T]) Flush(id string) bool {
	return c.scheduler.Flush(id)
}

// TakeErrors returns the commits abandoned since the last call, as
// *CommitError values, and forgets them.
func (c *Coordinator[T]) TakeErrors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := c.errs
	c.errs = nil
	return errs
}

// FlushAll commits every pending deletion before returning. Call it when the
// owning screen goes away.
func (c *Coordinator[T]) FlushAll() int {
	// Commits take mu themselves, so it must not be held here.
	n := c.scheduler.FlushAll()
	if n > 0 {
		c.log.WithField("count", n).Info("flushed pending deletions")
	}
	return n
}

// IsPending reports whether id is hidden awaiting commit.
func (c *Coordinator[T]) IsPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Contains(id)
}

// PendingIDs returns the pending ids, oldest first.
func (c *Coordinator[T]) PendingIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.IDs()
}

// LastDeleted returns the id that Undo would restore.
func (c *Coordinator[T]) LastDeleted() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.undo.Last()
}

// Visible filters out pending items, keeping the order of items.
func (c *Coordinator[T]) Visible(items []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !c.pending.Contains(c.kind.ID(item)) {
			out = append(out, item)
		}
	}
	return out
}

// commit deletes entry from storage if it is still pending. It is reached
// from exactly one of the timer or a flush.
func (c *Coordinator[T]) commit(entry *PendingEntry[T]) {
	c.mu.Lock()
	cur, ok := c.pending.Get(entry.ItemID)
	live := ok && cur == entry
	c.mu.Unlock()
	if !live {
		return
	}

	log := c.log.WithField("id", entry.ItemID)
	err := c.retry.run(c.ctx, c.clock, log, func(ctx context.Context) error {
		return c.kind.Delete(ctx, entry.ItemID)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.pending.removeEntry(entry)
	last, hasLast := c.undo.Last()
	current := removed && hasLast && last == entry.ItemID
	if current {
		c.undo.Clear(entry.ItemID)
	}

	if err != nil {
		log.WithError(err).Error("deletion abandoned, item restored")
		subject := c.kind.DisplayName(entry.Snapshot)
		c.errs = append(c.errs, &CommitError{Kind: c.kind.Name, ID: entry.ItemID, Subject: subject, Err: err})
		alert := State{Status: Visible, Message: c.failedMsg, Subject: fmt.Sprintf("%s: %v", subject, err)}
		// An undoable notice for another pending deletion keeps the slot
		// until it goes away.
		if c.owner != "" && (c.owner != entry.ItemID || !removed) {
			c.alerts = append(c.alerts, alert)
			return
		}
		c.owner = ""
		c.notices.Alert(alert.Message, alert.Subject)
		return
	}

	log.Info("deletion committed")
	if removed && c.owner == entry.ItemID {
		c.releaseSlotLocked()
	}
}

// releaseSlotLocked shows the oldest waiting failure notice, or hides the
// slot when there is none.
func (c *Coordinator[T]) releaseSlotLocked() {
	c.owner = ""
	if len(c.alerts) > 0 {
		next := c.alerts[0]
		c.alerts = c.alerts[1:]
		c.notices.Alert(next.Message, next.Subject)
		return
	}
	c.notices.Hide()
}
