package edfkernel

// Spawn is the translation of create_task in start-up mode: it allocates a
// TCB and inserts it into Ready without blocking or re-electing (the kernel
// is not yet running, so there is no Running task to preempt). It is only
// legal before Run/StartManual.
func (k *Kernel) Spawn(body TaskFunc, deadline uint32) (*Task, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.startup {
		return nil, ErrStartupOnly
	}
	k.nextID++
	t := newTask(k, k.nextID, body, deadline, k.cfg.StackSize, false)
	t.node = k.ready.Insert(t, deadline)
	t.curList = k.ready
	k.metric.TaskCreated()
	k.log.Debug().Stringer("task", t).Uint32("deadline", deadline).Msg("task spawned")
	return t, nil
}

// CreateTask is the translation of create_task in running mode: it follows
// the full block-protocol, since inserting a new deadline-bearing task into
// Ready can legitimately displace the caller.
func (t *Task) CreateTask(body TaskFunc, deadline uint32) (*Task, error) {
	k := t.k
	k.mu.Lock()
	if k.startup {
		k.mu.Unlock()
		return nil, ErrRunningOnly
	}
	k.nextID++
	newT := newTask(k, k.nextID, body, deadline, k.cfg.StackSize, false)
	newT.node = k.ready.Insert(newT, deadline)
	newT.curList = k.ready
	k.metric.TaskCreated()
	k.log.Debug().Stringer("task", newT).Uint32("deadline", deadline).Msg("task created")
	park := k.electLocked(t)
	k.mu.Unlock()
	if park {
		<-t.resumeCh
	}
	return newT, nil
}

// Terminate is the translation of terminate: the task is unlinked from
// whichever list currently owns it (almost always Ready, since a task only
// calls Terminate on itself while running) and a successor is elected. The
// terminating goroutine does not park — it simply returns after this call,
// ending its own execution, so idle (or some other ready task) takes over
// at the next handoff. Terminate is idempotent: a body that calls it
// directly and then returns triggers run's automatic call a second time.
func (t *Task) Terminate() {
	if t.isIdle {
		return
	}
	k := t.k
	k.mu.Lock()
	if t.terminated {
		k.mu.Unlock()
		return
	}
	t.terminated = true
	removeFromCurrentListLocked(t)
	if t.slot != nil {
		t.slot.owner = nil
		t.slot = nil
	}
	k.metric.TaskTerminated()
	k.log.Debug().Stringer("task", t).Msg("task terminated")
	k.electLocked(nil)
	k.mu.Unlock()
	close(t.done)
}

// SetDeadline is the translation of set_deadline: the caller's deadline
// changes and it is re-inserted into Ready at its new position, which can
// change who is Running.
func (t *Task) SetDeadline(d uint32) {
	k := t.k
	k.runElection(t, func() {
		k.ready.Remove(t.node)
		t.deadline = d
		t.node = k.ready.Insert(t, d)
	})
}
