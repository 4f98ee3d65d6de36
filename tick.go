package edfkernel

import (
	"context"
	"time"
)

// tick is the translation of TimerInt, invoked either by Run's real-time
// ticker loop, or synchronously by Advance in tests.
func (k *Kernel) tick() {
	k.mu.Lock()
	k.tickCounter++

	for {
		front := k.timer.Front()
		if front == nil || front.Value.wakeAt > k.tickCounter {
			break
		}
		k.wakeLocked(front.Value)
	}
	for {
		front := k.waiting.Front()
		if front == nil || front.Value.deadline > k.tickCounter {
			break
		}
		k.wakeLocked(front.Value)
	}

	k.metric.Tick(k.tickCounter)
	k.electLocked(nil)
	k.mu.Unlock()
}

// Run starts the periodic ticker — the Go stand-in for timer0_start — and
// blocks until ctx is cancelled. This is the idiomatic rendition of a call
// that "never returns" under normal operation. Calling Run more than once,
// or after StartManual, is a programming error.
func (k *Kernel) Run(ctx context.Context) error {
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return ErrStartupOnly
	}
	k.started = true
	k.startup = false
	k.electLocked(nil)
	k.mu.Unlock()

	ticker := time.NewTicker(k.cfg.TickPeriod)
	defer ticker.Stop()
	k.log.Info().Dur("period", k.cfg.TickPeriod).Msg("kernel running")

	for {
		select {
		case <-ctx.Done():
			k.log.Info().Msg("kernel stopped")
			return nil
		case <-ticker.C:
			k.tick()
		}
	}
}

// StartManual performs the same start-up transition as Run but starts no
// real ticker, pairing with Advance for deterministic tests.
func (k *Kernel) StartManual() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		return ErrStartupOnly
	}
	k.started = true
	k.startup = false
	k.electLocked(nil)
	return nil
}

// Advance steps the tick handler synchronously n times. Only valid after
// StartManual; intended for tests that need deterministic time control.
func (k *Kernel) Advance(n uint32) {
	for i := uint32(0); i < n; i++ {
		k.tick()
	}
}
