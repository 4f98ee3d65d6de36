package edfkernel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collectTasks(l *List[*Task]) []*Task {
	var out []*Task
	for n := l.head.next; n != l.tail; n = n.next {
		out = append(out, n.Value)
	}
	return out
}

// checkInvariants asserts the structural invariants that must hold in every
// reachable scheduler state: EDF head, list sort order, single-list
// membership, idle presence and mailbox bounds. Every kernel mutation
// happens under k.mu, so any state observed under the lock is a reachable
// quiescent state.
func checkInvariants(t *testing.T, k *Kernel, boxes ...*Mailbox) {
	t.Helper()
	k.mu.Lock()
	defer k.mu.Unlock()

	ready := collectTasks(k.ready)
	timer := collectTasks(k.timer)
	waiting := collectTasks(k.waiting)

	// Idle is always ready and carries the maximum deadline.
	require.NotEmpty(t, ready)
	idleSeen := false
	for _, task := range ready {
		if task.isIdle {
			idleSeen = true
			require.Equal(t, uint32(math.MaxUint32), task.deadline)
		}
	}
	require.True(t, idleSeen, "idle task missing from ready")

	// The running task is the EDF minimum at the head of ready.
	require.Same(t, ready[0], k.running)
	for _, task := range ready {
		require.LessOrEqual(t, k.running.deadline, task.deadline)
	}

	// Sort order: ready and waiting ascend by deadline, timer by wake tick.
	for i := 1; i < len(ready); i++ {
		require.LessOrEqual(t, ready[i-1].deadline, ready[i].deadline)
	}
	for i := 1; i < len(waiting); i++ {
		require.LessOrEqual(t, waiting[i-1].deadline, waiting[i].deadline)
	}
	for i := 1; i < len(timer); i++ {
		require.LessOrEqual(t, timer[i-1].wakeAt, timer[i].wakeAt)
	}

	// Every task lives in exactly one list.
	seen := make(map[*Task]int)
	for _, task := range ready {
		seen[task]++
	}
	for _, task := range timer {
		seen[task]++
	}
	for _, task := range waiting {
		seen[task]++
	}
	for task, n := range seen {
		require.Equal(t, 1, n, "%s appears in %d lists", task, n)
	}

	// Mailbox bounds and the sign rule on nBlockedMsg.
	for _, mb := range boxes {
		require.GreaterOrEqual(t, mb.nMessages, 0)
		require.LessOrEqual(t, mb.nMessages, mb.nMaxMessages)
		require.Equal(t, mb.nMessages, mb.messages.Len())
		if front := mb.messages.Front(); front != nil {
			switch {
			case mb.nBlockedMsg > 0:
				require.Equal(t, StatusSendWait, front.Value.status)
			case mb.nBlockedMsg < 0:
				require.Equal(t, StatusRecvWait, front.Value.status)
			}
		} else {
			require.Equal(t, 0, mb.nBlockedMsg)
		}
	}
}

// A producer/consumer pair plus an unrelated sleeper, with the invariants
// re-checked between every tick of the run.
func TestInvariantsAcrossMixedWorkload(t *testing.T) {
	k := newTestKernel(t)
	mb, err := k.CreateMailbox(2, 1)
	require.NoError(t, err)

	done := make(chan struct{}, 3)

	_, err = k.Spawn(func(t *Task) {
		for i := byte(0); i < 3; i++ {
			if err := t.Wait(5); err != nil {
				break
			}
			if err := t.SendWait(mb, []byte{i}); err != nil {
				break
			}
		}
		done <- struct{}{}
	}, 500)
	require.NoError(t, err)

	_, err = k.Spawn(func(t *Task) {
		buf := make([]byte, 1)
		for i := 0; i < 3; i++ {
			if err := t.ReceiveWait(mb, buf); err != nil {
				break
			}
			if err := t.Wait(3); err != nil {
				break
			}
		}
		done <- struct{}{}
	}, 800)
	require.NoError(t, err)

	_, err = k.Spawn(func(t *Task) {
		t.Wait(50)
		done <- struct{}{}
	}, 2000)
	require.NoError(t, err)

	require.NoError(t, k.StartManual())
	checkInvariants(t, k, mb)

	deadline := time.After(5 * time.Second)
	remaining := 3
	lastTick := k.Ticks()
	for remaining > 0 {
		select {
		case <-done:
			remaining--
		case <-deadline:
			t.Fatal("timed out while ticking")
		default:
			k.Advance(1)
			checkInvariants(t, k, mb)
			now := k.Ticks()
			require.GreaterOrEqual(t, now, lastTick)
			lastTick = now
		}
	}
	checkInvariants(t, k, mb)
}
