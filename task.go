package edfkernel

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TaskFunc is a task body. It receives its own handle so it can call back
// into the kernel (Wait, SendWait, Terminate, ...) without a package-level
// "current task" global.
type TaskFunc func(t *Task)

// Task is the Go rendition of a TCB. Its saved processor context has no
// explicit representation: the goroutine running body *is* the saved
// context, parked on resumeCh between elections.
type Task struct {
	id        uint64
	k         *Kernel
	body      TaskFunc
	isIdle    bool
	stackHint int

	deadline uint32
	wakeAt   uint32

	node    *Node[*Task] // current position in whichever of ready/timer/waiting owns this task
	curList *List[*Task] // the list t.node currently belongs to (ready, timer or waiting)
	slot    *message     // mailbox slot this task owns while blocked on IPC, else nil
	parked  bool         // true while the goroutine is blocked on resumeCh awaiting a handoff

	resumeCh   chan struct{}
	done       chan struct{}
	terminated bool // makes Terminate idempotent: a caller-issued call followed by run's automatic one

	log zerolog.Logger
}

func (t *Task) String() string {
	if t.isIdle {
		return "idle"
	}
	return fmt.Sprintf("task#%d", t.id)
}

// Deadline returns the task's own absolute deadline tick.
func (t *Task) Deadline() uint32 { return t.deadline }

// Done returns a channel closed once the task has terminated, letting a host
// program (or a test) observe completion without its own ad-hoc signal.
func (t *Task) Done() <-chan struct{} { return t.done }

func newTask(k *Kernel, id uint64, body TaskFunc, deadline uint32, stackHint int, isIdle bool) *Task {
	t := &Task{
		id:        id,
		k:         k,
		body:      body,
		isIdle:    isIdle,
		stackHint: stackHint,
		deadline:  deadline,
		// A non-idle task's goroutine blocks on resumeCh immediately (see
		// run below), so it starts out parked, awaiting its first handoff.
		parked:   !isIdle,
		resumeCh: make(chan struct{}),
		done:     make(chan struct{}),
		log:      k.log.With().Str("task", fmt.Sprintf("task#%d", id)).Logger(),
	}
	if !isIdle {
		go t.run()
	}
	return t
}

// run is the goroutine entrypoint for every non-idle task: park until first
// elected, execute the body, then terminate automatically if the body
// returns without calling Terminate itself. Terminate is idempotent, so a
// body that calls it directly (the source's own exit idiom) and then
// returns does not panic when run calls it a second time.
func (t *Task) run() {
	<-t.resumeCh
	t.log.Debug().Msg("task started")
	t.body(t)
	t.Terminate()
}
