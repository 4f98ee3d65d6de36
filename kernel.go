package edfkernel

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Metrics is the observation surface the kernel pushes events through. A nil
// Metrics is a valid, no-op default; internal/metrics.Collector implements
// this interface without the kernel package importing it, avoiding a cycle
// between the kernel and its own ambient instrumentation.
type Metrics interface {
	TaskCreated()
	TaskTerminated()
	DeadlineMiss()
	Tick(tickCounter uint32)
	ReadyLen(n int)
	MailboxDepth(n int)
}

type noopMetrics struct{}

func (noopMetrics) TaskCreated()     {}
func (noopMetrics) TaskTerminated()  {}
func (noopMetrics) DeadlineMiss()    {}
func (noopMetrics) Tick(uint32)      {}
func (noopMetrics) ReadyLen(int)     {}
func (noopMetrics) MailboxDepth(int) {}

// Config holds the tunables a host program supplies via Option. It carries
// no config-library dependency itself — internal/config translates a koanf
// tree into this struct; the kernel package only ever sees the plain values.
type Config struct {
	TickPeriod time.Duration
	StackSize  int
}

func defaultConfig() Config {
	return Config{
		TickPeriod: time.Millisecond,
		StackSize:  4096,
	}
}

// Kernel is the single owner of all scheduler-wide mutable state: the three
// ordered lists, the tick counter and the currently running task. Every
// mutation happens under mu, the Go translation of isr_off/isr_on.
type Kernel struct {
	mu sync.Mutex

	ready   *List[*Task]
	timer   *List[*Task]
	waiting *List[*Task]

	tickCounter uint32
	running     *Task
	idle        *Task

	startup bool
	started bool

	nextID uint64
	cfg    Config
	log    zerolog.Logger
	metric Metrics
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithConfig overrides the default Config.
func WithConfig(cfg Config) Option {
	return func(k *Kernel) { k.cfg = cfg }
}

// WithLogger attaches a zerolog.Logger; the default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

// WithMetrics attaches a Metrics sink; the default is a no-op.
func WithMetrics(m Metrics) Option {
	return func(k *Kernel) { k.metric = m }
}

// New allocates a Kernel, its three lists, and its idle task. This is the
// translation of init_kernel: unlike the C allocator, Go's allocation cannot
// fail, so there is no FAIL return — an invalid Option-supplied Config is
// the only rejectable precondition.
func New(opts ...Option) (*Kernel, error) {
	k := &Kernel{
		ready:   NewList[*Task](),
		timer:   NewList[*Task](),
		waiting: NewList[*Task](),
		startup: true,
		cfg:     defaultConfig(),
		log:     zerolog.Nop(),
		metric:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.cfg.TickPeriod <= 0 {
		return nil, ErrFail
	}
	k.idle = newTask(k, 0, nil, math.MaxUint32, k.cfg.StackSize, true)
	k.idle.node = k.ready.Insert(k.idle, k.idle.deadline)
	k.idle.curList = k.ready
	k.running = k.idle
	k.log.Debug().Msg("kernel initialized")
	return k, nil
}

// Ticks returns the current absolute tick count.
func (k *Kernel) Ticks() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tickCounter
}

// SetTicks overwrites the absolute tick count, for tests that need to
// fast-forward or pin time.
func (k *Kernel) SetTicks(v uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tickCounter = v
}
