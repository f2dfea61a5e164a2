package deletion

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Handle describes a scheduled commit.
type Handle struct {
	ID          string
	ScheduledAt time.Time
	Deadline    time.Time
}

type task struct {
	id     string
	seq    uint64
	timer  Timer
	commit func(id string)
	handle *Handle
}

// Scheduler owns one cancellable delayed commit per id.
//
// A task leaves the table exactly once: when its timer fires, when it is
// flushed, or when it is cancelled. Whichever path removes it is the only one
// allowed to act on it, so a commit runs at most once per task even when the
// timer and a flush race.
type Scheduler struct {
	clock Clock
	log   *logrus.Entry

	mu       sync.Mutex
	tasks    map[string]*task
	seq      uint64
	inflight int // timer commits still running
	idle     *sync.Cond
}

// NewScheduler creates a scheduler driven by clock.
func NewScheduler(clock Clock, log *logrus.Entry) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = discardLogger()
	}
	s := &Scheduler{
		clock: clock,
		log:   log,
		tasks: make(map[string]*task),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Schedule arms a timer that runs commit(id) after delay. Scheduling an id
// that is still armed replaces its timer, restarting the countdown.
func (s *Scheduler) Schedule(id string, delay time.Duration, commit func(id string)) *Handle {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[id]; ok {
		old.timer.Stop()
		delete(s.tasks, id)
		s.log.WithField("id", id).Debug("rescheduled pending deletion")
	}

	s.seq++
	t := &task{
		id:     id,
		seq:    s.seq,
		commit: commit,
		handle: &Handle{ID: id, ScheduledAt: now, Deadline: now.Add(delay)},
	}
	s.tasks[id] = t
	t.timer = s.clock.AfterFunc(delay, func() { s.fire(t) })

	s.log.WithFields(logrus.Fields{"id": id, "delay": delay}).Debug("scheduled deletion")
	return t.handle
}

// claimLocked removes t from the table if it is still the live task for its id.
func (s *Scheduler) claimLocked(t *task) bool {
	if cur, ok := s.tasks[t.id]; !ok || cur != t {
		return false
	}
	delete(s.tasks, t.id)
	return true
}

func (s *Scheduler) fire(t *task) {
	s.mu.Lock()
	claimed := s.claimLocked(t)
	if claimed {
		s.inflight++
	}
	s.mu.Unlock()
	if !claimed {
		return
	}

	defer func() {
		s.mu.Lock()
		s.inflight--
		if s.inflight == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
	}()
	s.log.WithField("id", t.id).Debug("deletion timer elapsed")
	t.commit(t.id)
}

// Cancel stops the timer for id. It returns false when nothing is armed for
// id, including when the timer has already fired.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	t.timer.Stop()
	s.log.WithField("id", id).Debug("cancelled deletion")
	return true
}

// Flush runs the commit for id now, on the caller's goroutine, and
// guarantees the timer will not run it again. It returns false if id was not
// armed. Either way no timer commit is still running when it returns.
func (s *Scheduler) Flush(id string) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
		t.timer.Stop()
	}
	s.mu.Unlock()

	if ok {
		s.log.WithField("id", id).Debug("flushing deletion")
		t.commit(id)
	}
	s.waitIdle()
	return ok
}

// FlushAll commits every armed task in the order it was scheduled and
// returns how many ran. It also waits for commits started by timers, so no
// commit is still running when it returns.
func (s *Scheduler) FlushAll() int {
	s.mu.Lock()
	claimed := make([]*task, 0, len(s.tasks))
	for id, t := range s.tasks {
		delete(s.tasks, id)
		t.timer.Stop()
		claimed = append(claimed, t)
	}
	s.mu.Unlock()

	sort.Slice(claimed, func(i, j int) bool { return claimed[i].seq < claimed[j].seq })
	for _, t := range claimed {
		t.commit(t.id)
	}
	if len(claimed) > 0 {
		s.log.WithField("count", len(claimed)).Debug("flushed pending deletions")
	}

	s.waitIdle()
	return len(claimed)
}

// waitIdle blocks until no timer commit is running.
func (s *Scheduler) waitIdle() {
	s.mu.Lock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Armed reports whether id has a timer that has not fired yet.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

// Pending returns the armed ids in the order they were scheduled.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	ids := make([]string, len(ordered))
	for i, t := range ordered {
		ids[i] = t.id
	}
	return ids
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
