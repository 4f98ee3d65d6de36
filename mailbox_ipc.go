package edfkernel

// checkPayloadLocked validates a caller-supplied buffer against the
// mailbox's fixed slot size and rejects further use of a mailbox that
// NoMessages has already closed — the translation of never dereferencing a
// freed mailbox pointer. Must be called with k.mu held.
func (mb *Mailbox) checkPayloadLocked(buf []byte) error {
	if mb.closed || len(buf) != mb.nDataSize {
		return ErrFail
	}
	return nil
}

// SendWait is the translation of send_wait. If a receiver is already queued
// (mb.nBlockedMsg < 0) the transfer is a rendezvous: the payload is copied
// directly into the receiver's buffer and both tasks stay off the Waiting
// list. Otherwise the caller queues a SendWait slot and blocks until some
// receiver consumes it or its own deadline passes.
func (t *Task) SendWait(mb *Mailbox, payload []byte) error {
	k := t.k
	k.mu.Lock()
	if err := mb.checkPayloadLocked(payload); err != nil {
		k.mu.Unlock()
		return err
	}
	if mb.nBlockedMsg < 0 {
		recv := mb.messages.Front().Value
		copy(recv.dst, payload)
		mb.removeMessageLocked(recv)
		receiver := recv.owner
		recv.owner = nil
		receiver.slot = nil
		k.wakeLocked(receiver)
		k.log.Debug().Stringer("task", t).Stringer("peer", receiver).Msg("send_wait rendezvous")
		park := k.electLocked(t)
		k.mu.Unlock()
		if park {
			<-t.resumeCh
		}
		return nil
	}

	data := make([]byte, len(payload))
	copy(data, payload)
	msg := &message{status: StatusSendWait, data: data, owner: t}
	mb.pushMessageLocked(msg)
	t.slot = msg
	k.moveToWaitingLocked(t)
	park := k.electLocked(t)
	k.mu.Unlock()
	if park {
		<-t.resumeCh
	}
	return t.resolveBlockedIPC(mb)
}

// ReceiveWait is the translation of receive_wait, the mirror of SendWait: it
// rendezvous with a queued SendWait or SendNoWait slot if one exists (head
// status is not RecvWait), otherwise queues its own RecvWait placeholder and
// blocks.
func (t *Task) ReceiveWait(mb *Mailbox, dst []byte) error {
	k := t.k
	k.mu.Lock()
	if err := mb.checkPayloadLocked(dst); err != nil {
		k.mu.Unlock()
		return err
	}
	if mb.nMessages > 0 && mb.nBlockedMsg >= 0 {
		sender := mb.messages.Front().Value
		copy(dst, sender.data)
		mb.removeMessageLocked(sender)
		if sender.status == StatusSendWait {
			owner := sender.owner
			sender.owner = nil
			owner.slot = nil
			k.wakeLocked(owner)
		}
		k.log.Debug().Stringer("task", t).Msg("receive_wait rendezvous")
		park := k.electLocked(t)
		k.mu.Unlock()
		if park {
			<-t.resumeCh
		}
		return nil
	}

	msg := &message{status: StatusRecvWait, dst: dst, owner: t}
	mb.pushMessageLocked(msg)
	t.slot = msg
	k.moveToWaitingLocked(t)
	park := k.electLocked(t)
	k.mu.Unlock()
	if park {
		<-t.resumeCh
	}
	return t.resolveBlockedIPC(mb)
}

// resolveBlockedIPC is the code that runs after a SendWait/ReceiveWait
// queueing branch resumes: it is the deadline check the source performs
// right after LoadContext returns, restricted to the branch that actually
// queued a slot (the rendezvous branches already returned before parking on
// anything IPC-related and never reach here).
func (t *Task) resolveBlockedIPC(mb *Mailbox) error {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.deadline <= k.tickCounter {
		// The slot can already be gone here: a counterparty may have
		// consumed it at the very tick the deadline expired, or overflow
		// eviction may have dropped it. Only the orphan case has anything
		// left to unlink.
		if t.slot != nil {
			mb.removeMessageLocked(t.slot)
			t.slot.owner = nil
			t.slot = nil
		}
		k.metric.DeadlineMiss()
		return ErrDeadlineReached
	}
	return nil
}

// SendNoWait is the translation of send_no_wait. Its rendezvous branch
// behaves exactly like SendWait's. Its queueing branch is the one place the
// source's asymmetry shows up: it never re-elects, since the caller never
// blocks — it evicts the oldest slot on overflow and returns immediately.
func (t *Task) SendNoWait(mb *Mailbox, payload []byte) error {
	k := t.k
	k.mu.Lock()
	if err := mb.checkPayloadLocked(payload); err != nil {
		k.mu.Unlock()
		return err
	}
	if mb.nBlockedMsg < 0 {
		recv := mb.messages.Front().Value
		copy(recv.dst, payload)
		mb.removeMessageLocked(recv)
		receiver := recv.owner
		recv.owner = nil
		receiver.slot = nil
		k.wakeLocked(receiver)
		park := k.electLocked(t)
		k.mu.Unlock()
		if park {
			<-t.resumeCh
		}
		return nil
	}

	data := make([]byte, len(payload))
	copy(data, payload)
	msg := &message{status: StatusSendNoWait, data: data}
	mb.pushMessageLocked(msg)
	k.mu.Unlock()
	return nil
}

// ReceiveNoWait is the translation of receive_no_wait: it only ever
// consumes a head slot whose status is SendWait or SendNoWait, reproducing
// the source's skip of a RecvWait head verbatim (reachable only if a caller
// already violated the wait/no-wait mixing restriction). It re-elects
// unconditionally, on both the hit and the miss branch.
func (t *Task) ReceiveNoWait(mb *Mailbox, dst []byte) error {
	k := t.k
	k.mu.Lock()
	if err := mb.checkPayloadLocked(dst); err != nil {
		k.mu.Unlock()
		return err
	}
	var err error
	if mb.nMessages > 0 && mb.nBlockedMsg >= 0 {
		sender := mb.messages.Front().Value
		copy(dst, sender.data)
		mb.removeMessageLocked(sender)
		if sender.status == StatusSendWait {
			owner := sender.owner
			sender.owner = nil
			owner.slot = nil
			k.wakeLocked(owner)
		}
	} else {
		err = ErrFail
	}
	park := k.electLocked(t)
	k.mu.Unlock()
	if park {
		<-t.resumeCh
	}
	return err
}
