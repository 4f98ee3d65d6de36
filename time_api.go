package edfkernel

// Wait is the translation of wait(n): the caller sleeps until tickCounter
// reaches its current value plus n. The sleep is never cut short by the
// caller's deadline; on waking it returns ErrDeadlineReached if that
// deadline has passed by then, else nil.
func (t *Task) Wait(n uint32) error {
	k := t.k
	k.runElection(t, func() {
		k.moveToTimerLocked(t, k.tickCounter+n)
	})

	k.mu.Lock()
	defer k.mu.Unlock()
	if t.deadline <= k.tickCounter {
		k.metric.DeadlineMiss()
		return ErrDeadlineReached
	}
	return nil
}
