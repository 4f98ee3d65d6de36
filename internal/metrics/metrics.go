// Package metrics wires the kernel's event hooks into Prometheus
// collectors, the same client library and naming conventions used
// elsewhere in the pack this kernel was grown from.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector implements edfkernel.Metrics structurally — the kernel package
// never imports this one, so there is no dependency cycle between the
// kernel and its own instrumentation.
type Collector struct {
	tasksCreated    prometheus.Counter
	tasksTerminated prometheus.Counter
	deadlineMisses  prometheus.Counter
	ticks           prometheus.Counter
	readyLen        prometheus.Gauge
	mailboxDepth    prometheus.Gauge
}

// New registers and returns a Collector against reg. Pass
// prometheus.DefaultRegisterer to expose it on the default /metrics handler.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edfkernel",
			Name:      "tasks_created_total",
			Help:      "Number of tasks created since kernel start-up.",
		}),
		tasksTerminated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edfkernel",
			Name:      "tasks_terminated_total",
			Help:      "Number of tasks that have terminated.",
		}),
		deadlineMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edfkernel",
			Name:      "deadline_misses_total",
			Help:      "Number of blocking calls that returned because the caller's own deadline passed.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edfkernel",
			Name:      "ticks_total",
			Help:      "Number of scheduler ticks processed.",
		}),
		readyLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edfkernel",
			Name:      "ready_list_length",
			Help:      "Current length of the ready list, including idle.",
		}),
		mailboxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edfkernel",
			Name:      "mailbox_depth",
			Help:      "Most recently observed message count of a mailbox.",
		}),
	}
	reg.MustRegister(
		c.tasksCreated,
		c.tasksTerminated,
		c.deadlineMisses,
		c.ticks,
		c.readyLen,
		c.mailboxDepth,
	)
	return c
}

func (c *Collector) TaskCreated()       { c.tasksCreated.Inc() }
func (c *Collector) TaskTerminated()    { c.tasksTerminated.Inc() }
func (c *Collector) DeadlineMiss()      { c.deadlineMisses.Inc() }
func (c *Collector) Tick(uint32)        { c.ticks.Inc() }
func (c *Collector) ReadyLen(n int)     { c.readyLen.Set(float64(n)) }
func (c *Collector) MailboxDepth(n int) { c.mailboxDepth.Set(float64(n)) }
