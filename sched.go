package edfkernel

// electLocked is the translation of RunningContext(): it recomputes Running
// from the head of Ready and, only on a genuine transition to a different
// non-idle task that is actually parked awaiting a handoff, hands off via a
// blocking send on that task's resumeCh. Must be called with k.mu held. self
// may be nil (tick-driven election has no "caller" to report park/no-park
// back to).
//
// Gating the send on next.parked matters because election does not imply
// true preemption: a task that is mid-flight executing ordinary Go
// statements between kernel calls keeps running even after a different task
// is elected (see DESIGN.md). If next is that still-running task rather
// than one genuinely blocked on its own resumeCh, sending here would block
// forever with mu held, since nothing will ever receive — next already has
// the CPU and was never parked waiting for it. Skipping the send in that
// case is safe: next is already executing, so no handoff is needed at all.
//
// The blocking send is otherwise safe to issue while mu is still held: a
// parked task's only code between releasing mu and the receive is the
// receive itself, so the wait is bounded, never a lock-ordering deadlock.
func (k *Kernel) electLocked(self *Task) (park bool) {
	front := k.ready.Front()
	next := front.Value
	prev := k.running
	k.running = next
	k.metric.ReadyLen(k.ready.Len())

	park = self != nil && self != next

	if next != prev && !next.isIdle && next.parked {
		next.parked = false
		next.resumeCh <- struct{}{}
	}
	if park {
		self.parked = true
	}
	return park
}

// runElection is the block-protocol helper used by Wait and SetDeadline:
// lock, run the list surgery, elect, unlock, then park the caller if it is
// no longer Running. The mailbox IPC entries and CreateTask run the same
// sequence inline.
func (k *Kernel) runElection(self *Task, surgery func()) {
	k.mu.Lock()
	surgery()
	park := k.electLocked(self)
	k.mu.Unlock()
	if park {
		<-self.resumeCh
	}
}

// removeFromCurrentListLocked unlinks t from whichever list it currently
// belongs to (never assuming it is Ready), so a future caller terminating or
// relocating a task that is not the running task cannot corrupt a different
// list's length counter.
func removeFromCurrentListLocked(t *Task) {
	if t.curList != nil {
		t.curList.Remove(t.node)
	}
	t.node = nil
	t.curList = nil
}

// moveToTimerLocked removes t from whichever list owns it and inserts it
// into Timer keyed by wakeAt, used by Wait.
func (k *Kernel) moveToTimerLocked(t *Task, wakeAt uint32) {
	removeFromCurrentListLocked(t)
	t.wakeAt = wakeAt
	t.node = k.timer.Insert(t, wakeAt)
	t.curList = k.timer
}

// moveToWaitingLocked removes t from whichever list owns it and inserts it
// into Waiting keyed by its deadline, used by the mailbox IPC queueing
// branches.
func (k *Kernel) moveToWaitingLocked(t *Task) {
	removeFromCurrentListLocked(t)
	t.node = k.waiting.Insert(t, t.deadline)
	t.curList = k.waiting
}

// wakeLocked moves t from whichever list currently owns it back into Ready
// keyed by its deadline. The owning list is taken from t itself rather than
// passed by the caller: a blocked task can already have been promoted out of
// Waiting by a deadline-expiry tick when its counterparty finally arrives,
// and removing it from the wrong list would corrupt both length counters.
func (k *Kernel) wakeLocked(t *Task) {
	removeFromCurrentListLocked(t)
	t.node = k.ready.Insert(t, t.deadline)
	t.curList = k.ready
}
