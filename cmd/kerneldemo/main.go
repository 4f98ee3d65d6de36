// Command kerneldemo reproduces the kernel's original bring-up test: two
// tasks handshake three messages through a single-slot mailbox, the third
// one deliberately timing out because no receiver is left to claim it.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	edfkernel "github.com/nilsviken/edfkernel"
	"github.com/nilsviken/edfkernel/internal/config"
	"github.com/nilsviken/edfkernel/internal/metrics"
)

const (
	testPattern1 uint32 = 0xAA
	testPattern2 uint32 = 0x55
)

func main() {
	var configPath string
	var tickPeriod time.Duration
	var metricsAddr string

	root := &cobra.Command{Use: "kerneldemo"}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the task1/task2 mailbox handshake demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tick-period") {
				cfg.Kernel.TickPeriod = tickPeriod
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			return runDemo(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	runCmd.Flags().DurationVar(&tickPeriod, "tick-period", 0, "override the scheduler tick period")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "override the metrics HTTP listen address")
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo(cfg config.Demo) error {
	runID := uuid.New()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(level).
		With().Timestamp().Str("run_id", runID.String()).Logger()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	k, err := edfkernel.New(
		edfkernel.WithConfig(cfg.Kernel),
		edfkernel.WithLogger(log),
		edfkernel.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	mb, err := k.CreateMailbox(1, 4)
	if err != nil {
		return err
	}

	var nTest1, nTest2, nTest3 bool

	if _, err := k.Spawn(task1(mb, &nTest3, log), 2000); err != nil {
		return err
	}
	if _, err := k.Spawn(task2(mb, &nTest1, &nTest2, log), 4000); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		deadline := time.After(5 * time.Second)
		<-deadline
		log.Info().Bool("test1", nTest1).Bool("test2", nTest2).Bool("test3", nTest3).Msg("demo window elapsed")
		stop()
	}()

	return k.Run(ctx)
}

func encodePattern(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func decodePattern(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// task1 is the translation of main.c's task1: it sends two patterns to
// task2 ten ticks apart, then attempts a third send that is expected to
// time out once task2 has already terminated.
func task1(mb *edfkernel.Mailbox, nTest3 *bool, log zerolog.Logger) edfkernel.TaskFunc {
	return func(t *edfkernel.Task) {
		if err := t.Wait(10); err != nil {
			log.Error().Err(err).Msg("task1: initial wait failed")
			return
		}
		if err := t.SendWait(mb, encodePattern(testPattern1)); err != nil {
			log.Error().Err(err).Msg("task1: first send_wait failed")
			return
		}
		if err := t.Wait(10); err != nil {
			log.Error().Err(err).Msg("task1: second wait failed")
			return
		}
		if err := t.SendWait(mb, encodePattern(testPattern2)); err != nil {
			log.Error().Err(err).Msg("task1: second send_wait failed")
			return
		}
		if err := t.Wait(10); err != nil {
			log.Error().Err(err).Msg("task1: third wait failed")
			return
		}
		if err := t.SendWait(mb, encodePattern(0)); err != nil {
			*nTest3 = true
			log.Info().Msg("task1: third send_wait timed out as expected, no receiver")
			return
		}
		log.Error().Msg("task1: third send_wait unexpectedly succeeded")
	}
}

// task2 is the translation of main.c's task2: it receives both patterns,
// sleeping twenty ticks between them, then terminates.
func task2(mb *edfkernel.Mailbox, nTest1, nTest2 *bool, log zerolog.Logger) edfkernel.TaskFunc {
	return func(t *edfkernel.Task) {
		buf := make([]byte, 4)
		if err := t.ReceiveWait(mb, buf); err != nil {
			log.Error().Err(err).Msg("task2: first receive_wait failed")
			return
		}
		*nTest1 = decodePattern(buf) == testPattern1

		if err := t.Wait(20); err != nil {
			log.Error().Err(err).Msg("task2: wait failed")
			return
		}
		if err := t.ReceiveWait(mb, buf); err != nil {
			log.Error().Err(err).Msg("task2: second receive_wait failed")
			return
		}
		*nTest2 = decodePattern(buf) == testPattern2
		log.Info().Bool("test1", *nTest1).Bool("test2", *nTest2).Msg("task2: handshake complete")
	}
}
