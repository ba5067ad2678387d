// Package game owns the round/spin state machine: time-driven
// transitions between idle, round-active and spinning, fed by an
// externally mutated queue of pending winning numbers.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/retry"
	"lucky-wheel/internal/roulette"
	"lucky-wheel/internal/store"
)

const (
	actorSystem     = "system"
	actorSystemName = "game-coordinator"
	eventBufferSize = 500
)

// Coordinator serializes every phase-mutating operation through an
// advisory latch: an operation finding the latch held fails with
// ErrBusy instead of blocking. The latch spans store I/O, where the
// state mutex cannot be held.
type Coordinator struct {
	store ResultStore
	audit AuditSink
	queue *queue.PendingQueue
	event *EventBuffer
	opts  Options

	mu           sync.Mutex
	runState     RunState
	roundActive  bool
	isSpinning   bool
	roundStarted time.Time
	resultNumber *int
	opInProgress bool
	lastActivity time.Time
	roundTimer   *time.Timer
	spinTimer    *time.Timer
	restartTimer *time.Timer
	cache        lastSpinCache
}

func NewCoordinator(st ResultStore, aud AuditSink, q *queue.PendingQueue, opts Options) *Coordinator {
	if q == nil {
		q = queue.New(0)
	}
	return &Coordinator{
		store:    st,
		audit:    aud,
		queue:    q,
		event:    NewEventBuffer(eventBufferSize),
		opts:     opts,
		runState: RunStateRunning,
	}
}

// Queue exposes the pending-number queue to the admin layers.
func (c *Coordinator) Queue() *queue.PendingQueue { return c.queue }

// Events exposes the lifecycle event ring.
func (c *Coordinator) Events() *EventBuffer { return c.event }

func (c *Coordinator) RunState() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runState
}

func (c *Coordinator) IsRunning() bool {
	return c.RunState() == RunStateRunning
}

// RecordActivity marks the front end as alive. Every poll calls this.
func (c *Coordinator) RecordActivity() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// beginOp acquires the advisory latch or fails with ErrBusy.
func (c *Coordinator) beginOp() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opInProgress {
		return ErrBusy
	}
	c.opInProgress = true
	return nil
}

func (c *Coordinator) endOp() {
	c.mu.Lock()
	c.opInProgress = false
	c.mu.Unlock()
}

// StartRound opens a timed window during which numbers may be queued.
func (c *Coordinator) StartRound(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	if c.runState != RunStateRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	if c.roundActive {
		c.mu.Unlock()
		return ErrRoundActive
	}
	if c.isSpinning {
		c.mu.Unlock()
		return ErrAlreadySpinning
	}
	c.stopRoundTimerLocked()
	c.stopRestartTimerLocked()
	c.roundActive = true
	c.roundStarted = time.Now()
	c.resultNumber = nil
	// starting a round counts as activity so the sweep grants it a
	// full timeout window
	c.lastActivity = c.roundStarted
	duration := c.opts.RoundDuration
	c.roundTimer = time.AfterFunc(duration, c.onRoundTimer)
	c.mu.Unlock()

	c.event.Append(EventRoundStarted, map[string]any{
		"duration_ms": duration.Milliseconds(),
	})
	log.Info().Dur("duration", duration).Msg("round started")
	return nil
}

// EndRound drains the queue, commits the FIFO head as the spin result
// and returns the remainder to the queue head. An empty drain goes
// straight to idle with no spin.
func (c *Coordinator) EndRound(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()
	return c.endRoundHeld(ctx)
}

// TriggerRoundEnd forces the round to settle before its timer.
func (c *Coordinator) TriggerRoundEnd(ctx context.Context) error {
	return c.EndRound(ctx)
}

// endRoundHeld runs the round-end transition with the latch already
// held by the caller.
func (c *Coordinator) endRoundHeld(ctx context.Context) error {
	c.mu.Lock()
	if !c.roundActive {
		c.mu.Unlock()
		return ErrNoActiveRound
	}
	c.stopRoundTimerLocked()
	c.mu.Unlock()

	drained := c.queue.DrainAll()
	if len(drained) == 0 {
		c.mu.Lock()
		c.roundActive = false
		c.isSpinning = false
		c.resultNumber = nil
		c.roundStarted = time.Time{}
		c.mu.Unlock()
		c.event.Append(EventRoundEndedEmpty, nil)
		log.Info().Msg("round ended with empty queue")
		c.scheduleAutoRestart()
		return nil
	}

	number := drained[0]
	rest := drained[1:]

	color, parity, err := roulette.Describe(number)
	var persisted store.SpinResult
	if err == nil && c.store != nil && c.store.IsConfigured() {
		err = retry.Do(ctx, c.opts.StoreRetryMax, c.opts.StoreRetryBase, func() error {
			var insErr error
			persisted, insErr = c.store.InsertSpinResult(ctx, number, string(color), string(parity))
			return insErr
		})
	}
	if err != nil {
		// rollback: the committed number and the remainder go back to
		// the head in pre-drain order, the machine returns to idle
		c.queue.RestoreFront(drained)
		c.mu.Lock()
		c.roundActive = false
		c.isSpinning = false
		c.resultNumber = nil
		c.roundStarted = time.Time{}
		c.mu.Unlock()
		log.Error().Err(err).Int("number", number).Msg("spin result persist failed, round rolled back")
		if c.audit != nil {
			c.audit.Record(ctx, actorSystem, actorSystemName, "spin_commit",
				fmt.Sprintf("persist failed for %d: %v", number, err), false)
		}
		return err
	}
	if len(rest) > 0 {
		c.queue.RestoreFront(rest)
	}

	if persisted.ID == "" {
		// degraded mode: keep the outcome visible for this process
		persisted = store.SpinResult{
			Number:     number,
			Color:      string(color),
			Parity:     string(parity),
			OccurredAt: time.Now().UTC(),
		}
	}

	spinWindow := c.opts.SpinAnimation + c.opts.SpinBuffer
	c.mu.Lock()
	c.roundActive = false
	c.isSpinning = true
	n := number
	c.resultNumber = &n
	c.roundStarted = time.Time{}
	c.cache = lastSpinCache{result: &persisted, fetchedAt: time.Now()}
	c.stopSpinTimerLocked()
	c.spinTimer = time.AfterFunc(spinWindow, c.onSpinTimer)
	c.mu.Unlock()

	c.event.Append(EventSpinCommitted, map[string]any{
		"number":   number,
		"color":    string(color),
		"parity":   string(parity),
		"returned": len(rest),
		"spin_ms":  spinWindow.Milliseconds(),
	})
	log.Info().Int("number", number).Str("color", string(color)).Int("returned", len(rest)).Msg("spin committed")
	if c.audit != nil {
		c.audit.Record(ctx, actorSystem, actorSystemName, "spin_commit",
			fmt.Sprintf("committed %d (%s/%s), returned %d to queue", number, color, parity, len(rest)), true)
	}
	return nil
}

// EndSpin closes the animation window and returns to idle.
func (c *Coordinator) EndSpin(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	if !c.isSpinning {
		c.mu.Unlock()
		return ErrNotSpinning
	}
	c.stopSpinTimerLocked()
	var number int
	if c.resultNumber != nil {
		number = *c.resultNumber
	}
	c.isSpinning = false
	c.resultNumber = nil
	c.mu.Unlock()

	if c.store != nil && c.store.IsConfigured() {
		if latest, err := c.store.LatestResult(ctx); err == nil {
			c.mu.Lock()
			c.cache = lastSpinCache{result: latest, fetchedAt: time.Now()}
			c.mu.Unlock()
		}
	}

	c.event.Append(EventSpinEnded, map[string]any{"number": number})
	log.Info().Int("number", number).Msg("spin ended")
	c.scheduleAutoRestart()
	return nil
}

// TriggerManualSpin puts n at the queue head and, when a round is
// active, settles it immediately. While idle the number just waits for
// the next round.
func (c *Coordinator) TriggerManualSpin(ctx context.Context, n int) error {
	if err := roulette.Validate(n); err != nil {
		return err
	}
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	if c.isSpinning {
		c.mu.Unlock()
		return ErrAlreadySpinning
	}
	roundActive := c.roundActive
	c.mu.Unlock()

	if err := c.queue.PushFront(n); err != nil {
		return err
	}
	if roundActive {
		return c.endRoundHeld(ctx)
	}
	return nil
}

// EnqueueNumber validates and appends n. On an idle running machine an
// enqueued number also opens the next round.
func (c *Coordinator) EnqueueNumber(ctx context.Context, n int) (roundStarted bool, err error) {
	if err := roulette.Validate(n); err != nil {
		return false, err
	}
	if err := c.queue.Enqueue(n); err != nil {
		return false, err
	}
	c.mu.Lock()
	idle := !c.roundActive && !c.isSpinning
	running := c.runState == RunStateRunning
	c.mu.Unlock()
	if idle && running {
		if err := c.StartRound(ctx); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func (c *Coordinator) Pause(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	if c.runState != RunStateRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.runState = RunStatePaused
	c.mu.Unlock()

	c.event.Append(EventGamePaused, nil)
	log.Info().Msg("game paused")
	return nil
}

func (c *Coordinator) Resume(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	if c.runState == RunStateRunning {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.runState = RunStateRunning
	c.mu.Unlock()

	c.event.Append(EventGameResumed, nil)
	log.Info().Msg("game resumed")
	return nil
}

// Stop halts the machine from any state: phase collapses to idle,
// timers are cancelled, the queue keeps its entries.
func (c *Coordinator) Stop(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	c.stopRoundTimerLocked()
	c.stopSpinTimerLocked()
	c.stopRestartTimerLocked()
	c.roundActive = false
	c.isSpinning = false
	c.resultNumber = nil
	c.roundStarted = time.Time{}
	c.runState = RunStateStopped
	c.mu.Unlock()

	c.event.Append(EventGameStopped, nil)
	log.Info().Msg("game stopped")
	return nil
}

// Reset is the hard recovery: idle phase, cleared queue, cancelled
// timers, cleared activity, run state back to running.
func (c *Coordinator) Reset(ctx context.Context) error {
	if err := c.beginOp(); err != nil {
		return err
	}
	defer c.endOp()

	c.mu.Lock()
	c.stopRoundTimerLocked()
	c.stopSpinTimerLocked()
	c.stopRestartTimerLocked()
	c.roundActive = false
	c.isSpinning = false
	c.resultNumber = nil
	c.roundStarted = time.Time{}
	c.lastActivity = time.Time{}
	c.runState = RunStateRunning
	c.mu.Unlock()

	dropped := c.queue.Clear()
	c.event.Append(EventGameReset, map[string]any{"queue_dropped": dropped})
	log.Info().Int("queue_dropped", dropped).Msg("game reset")
	return nil
}

// Snapshot returns the poll payload. It first settles a round whose
// timer is logically overdue so the reported phase is never expired,
// then reads state; the last spin result appears only when idle.
func (c *Coordinator) Snapshot(ctx context.Context) Snapshot {
	c.maybeExpireRound(ctx)

	c.mu.Lock()
	snap := Snapshot{
		RunState:        c.runState,
		RoundActive:     c.roundActive,
		IsSpinning:      c.isSpinning,
		RoundDurationMS: c.opts.RoundDuration.Milliseconds(),
		SpinDurationMS:  (c.opts.SpinAnimation + c.opts.SpinBuffer).Milliseconds(),
		QueueLength:     c.queue.Len(),
	}
	if c.resultNumber != nil {
		n := *c.resultNumber
		snap.ResultNumber = &n
	}
	if !c.roundStarted.IsZero() {
		t := c.roundStarted
		snap.RoundStartedAt = &t
	}
	idle := !c.roundActive && !c.isSpinning
	cached := c.cache.result
	cacheFresh := cached != nil && time.Since(c.cache.fetchedAt) < c.opts.LastSpinCacheTTL
	c.mu.Unlock()

	if !idle {
		return snap
	}
	if cacheFresh {
		snap.LastSpinResult = cached
		return snap
	}
	if c.store != nil && c.store.IsConfigured() {
		if latest, err := c.store.LatestResult(ctx); err == nil {
			c.mu.Lock()
			c.cache = lastSpinCache{result: latest, fetchedAt: time.Now()}
			c.mu.Unlock()
			snap.LastSpinResult = latest
			return snap
		}
	}
	// stale cache beats no data; a snapshot never fails
	snap.LastSpinResult = cached
	return snap
}

// StatusSummary renders a one-line state description for admins.
func (c *Coordinator) StatusSummary(ctx context.Context) string {
	snap := c.Snapshot(ctx)
	phase := "idle"
	if snap.RoundActive {
		phase = "round_active"
	} else if snap.IsSpinning {
		phase = "spinning"
	}
	out := fmt.Sprintf("state=%s phase=%s queue=%d", snap.RunState, phase, snap.QueueLength)
	if snap.ResultNumber != nil {
		out += fmt.Sprintf(" result=%d", *snap.ResultNumber)
	}
	if snap.LastSpinResult != nil {
		out += fmt.Sprintf(" last=%d(%s)", snap.LastSpinResult.Number, snap.LastSpinResult.Color)
	}
	return out
}

// maybeExpireRound force-ends a round whose elapsed time has passed its
// duration but whose timer has not fired yet. Skipped when another
// operation holds the latch; that operation settles the phase itself.
func (c *Coordinator) maybeExpireRound(ctx context.Context) {
	c.mu.Lock()
	overdue := c.roundActive && !c.roundStarted.IsZero() && time.Since(c.roundStarted) >= c.opts.RoundDuration
	c.mu.Unlock()
	if !overdue {
		return
	}
	if err := c.beginOp(); err != nil {
		return
	}
	defer c.endOp()
	c.mu.Lock()
	overdue = c.roundActive && !c.roundStarted.IsZero() && time.Since(c.roundStarted) >= c.opts.RoundDuration
	c.mu.Unlock()
	if overdue {
		if err := c.endRoundHeld(ctx); err != nil {
			log.Error().Err(err).Msg("lazy round expiry failed")
		}
	}
}

// StartSweeper runs the inactivity sweep until ctx ends. When the
// front end stops polling past the timeout mid-round or mid-spin, the
// phase collapses straight to idle, bypassing persistence: mid-round
// nothing was committed yet, mid-spin the result is already durable.
func (c *Coordinator) StartSweeper(ctx context.Context) {
	interval := c.opts.SweepInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.sweepInactivity(now)
			}
		}
	}()
}

func (c *Coordinator) sweepInactivity(now time.Time) {
	c.mu.Lock()
	idle := !c.roundActive && !c.isSpinning
	last := c.lastActivity
	timeout := c.opts.ActivityTimeout
	c.mu.Unlock()
	if idle || timeout <= 0 || last.IsZero() || now.Sub(last) <= timeout {
		return
	}
	if err := c.beginOp(); err != nil {
		return
	}
	defer c.endOp()

	c.mu.Lock()
	if (!c.roundActive && !c.isSpinning) || now.Sub(c.lastActivity) <= timeout {
		c.mu.Unlock()
		return
	}
	wasRound := c.roundActive
	wasSpin := c.isSpinning
	c.stopRoundTimerLocked()
	c.stopSpinTimerLocked()
	c.stopRestartTimerLocked()
	c.roundActive = false
	c.isSpinning = false
	c.resultNumber = nil
	c.roundStarted = time.Time{}
	c.mu.Unlock()

	c.event.Append(EventForcedIdle, map[string]any{
		"was_round_active": wasRound,
		"was_spinning":     wasSpin,
	})
	log.Warn().Bool("was_round_active", wasRound).Bool("was_spinning", wasSpin).Msg("no frontend activity, forced idle")
}

// scheduleAutoRestart arms the optional restart timer after the
// machine goes idle. Disabled by default; StartRound re-checks its own
// preconditions when the timer fires.
func (c *Coordinator) scheduleAutoRestart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.AutoRestartDelay <= 0 || c.runState != RunStateRunning {
		return
	}
	c.stopRestartTimerLocked()
	c.restartTimer = time.AfterFunc(c.opts.AutoRestartDelay, func() {
		if err := c.StartRound(context.Background()); err != nil {
			log.Debug().Err(err).Msg("auto restart skipped")
		}
	})
}

func (c *Coordinator) onRoundTimer() {
	if err := c.EndRound(context.Background()); err != nil {
		log.Debug().Err(err).Msg("round timer end skipped")
	}
}

func (c *Coordinator) onSpinTimer() {
	if err := c.EndSpin(context.Background()); err != nil {
		log.Debug().Err(err).Msg("spin timer end skipped")
	}
}

func (c *Coordinator) stopRoundTimerLocked() {
	if c.roundTimer != nil {
		c.roundTimer.Stop()
		c.roundTimer = nil
	}
}

func (c *Coordinator) stopSpinTimerLocked() {
	if c.spinTimer != nil {
		c.spinTimer.Stop()
		c.spinTimer = nil
	}
}

func (c *Coordinator) stopRestartTimerLocked() {
	if c.restartTimer != nil {
		c.restartTimer.Stop()
		c.restartTimer = nil
	}
}
