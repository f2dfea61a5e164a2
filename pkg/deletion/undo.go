package deletion

// Undoer remembers the single most recent deletion. Only that one can be
// reversed; requesting a newer deletion makes every older one permanent.
// Like PendingSet it relies on the Coordinator for locking.
type Undoer struct {
	last string
	set  bool
}

// OnScheduled records id as the latest deletion, replacing any earlier one.
func (u *Undoer) OnScheduled(id string) {
	u.last = id
	u.set = true
}

// Last returns the id eligible for undo.
func (u *Undoer) Last() (string, bool) {
	return u.last, u.set
}

// Clear forgets id if it is the current latest deletion.
func (u *Undoer) Clear(id string) {
	if u.set && u.last == id {
		u.last = ""
		u.set = false
	}
}

// Undo reverses the latest deletion with reverse, which must report whether
// the deletion could still be stopped. Nothing else is touched.
func (u *Undoer) Undo(reverse func(id string) bool) (string, bool) {
	id, ok := u.Last()
	if !ok {
		return "", false
	}
	if !reverse(id) {
		return "", false
	}
	u.Clear(id)
	return id, true
}
