package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.TaskCreated()
	c.TaskCreated()
	c.TaskTerminated()
	c.DeadlineMiss()
	c.Tick(1)
	c.Tick(2)
	c.Tick(3)
	c.ReadyLen(4)
	c.MailboxDepth(2)

	require.Equal(t, float64(2), testutil.ToFloat64(c.tasksCreated))
	require.Equal(t, float64(1), testutil.ToFloat64(c.tasksTerminated))
	require.Equal(t, float64(1), testutil.ToFloat64(c.deadlineMisses))
	require.Equal(t, float64(3), testutil.ToFloat64(c.ticks))
	require.Equal(t, float64(4), testutil.ToFloat64(c.readyLen))
	require.Equal(t, float64(2), testutil.ToFloat64(c.mailboxDepth))
}

func TestCollectorRegistersAllSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 6)
}
