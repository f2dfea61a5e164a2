package deletion

import "sync"

// Status is the tag of a notification State.
type Status int

const (
	Hidden Status = iota
	Visible
)

func (s Status) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	default:
		return "unknown"
	}
}

// State is what the UI should show. Message and Subject are only meaningful
// when Status is Visible. Undoable is false for failure notices, which have
// no action attached.
type State struct {
	Status   Status
	Message  string
	Subject  string
	Undoable bool
}

// IsVisible reports whether the notification should be drawn.
func (s State) IsVisible() bool { return s.Status == Visible }

// Notifications is a single-slot value with latest-value replay: subscribers
// always get the current state first and never see a backlog.
type Notifications struct {
	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

// NewNotifications returns a hidden notification slot.
func NewNotifications() *Notifications {
	return &Notifications{subs: make(map[int]chan State)}
}

// Show replaces whatever is displayed with an undoable message.
func (n *Notifications) Show(message, subject string) {
	n.set(State{Status: Visible, Message: message, Subject: subject, Undoable: true})
}

// Alert replaces whatever is displayed with a message that offers no undo.
func (n *Notifications) Alert(message, subject string) {
	n.set(State{Status: Visible, Message: message, Subject: subject})
}

// Hide clears the notification. Hiding an already hidden slot is a no-op.
func (n *Notifications) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state.Status == Hidden {
		return
	}
	n.state = State{Status: Hidden}
	n.publishLocked()
}

// State returns the current value.
func (n *Notifications) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Subscribe returns a channel that receives the current state immediately and
// every later change. Slow readers only ever see the latest value. The
// returned func unsubscribes and closes the channel.
func (n *Notifications) Subscribe() (<-chan State, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan State, 1)
	ch <- n.state
	id := n.next
	n.next++
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

func (n *Notifications) set(s State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = s
	n.publishLocked()
}

func (n *Notifications) publishLocked() {
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- n.state
	}
}
