package game

import (
	"context"
	"time"

	"lucky-wheel/internal/config"
	"lucky-wheel/internal/store"
)

// RunState gates whether the phase machine may progress. It is an
// independent axis from the round/spin phase.
type RunState string

const (
	RunStateRunning RunState = "running"
	RunStatePaused  RunState = "paused"
	RunStateStopped RunState = "stopped"
)

// ResultStore is the slice of the store the coordinator needs. An
// unconfigured store degrades the coordinator, it never stops it.
type ResultStore interface {
	InsertSpinResult(ctx context.Context, number int, color, parity string) (store.SpinResult, error)
	LatestResult(ctx context.Context) (*store.SpinResult, error)
	IsConfigured() bool
}

// AuditSink receives the coordinator's own audit entries. Appends are
// best-effort on the recorder side.
type AuditSink interface {
	Record(ctx context.Context, actorID, actorName, action, details string, success bool)
}

type Options struct {
	RoundDuration    time.Duration
	SpinAnimation    time.Duration
	SpinBuffer       time.Duration
	ActivityTimeout  time.Duration
	SweepInterval    time.Duration
	LastSpinCacheTTL time.Duration
	AutoRestartDelay time.Duration
	StoreRetryMax    int
	StoreRetryBase   time.Duration
}

func OptionsFromConfig(cfg config.GameConfig) Options {
	out := Options{
		RoundDuration:    time.Duration(cfg.RoundDurationMS) * time.Millisecond,
		SpinAnimation:    time.Duration(cfg.SpinAnimationMS) * time.Millisecond,
		SpinBuffer:       time.Duration(cfg.SpinBufferMS) * time.Millisecond,
		ActivityTimeout:  time.Duration(cfg.ActivityTimeoutMS) * time.Millisecond,
		SweepInterval:    time.Duration(cfg.SweepIntervalMS) * time.Millisecond,
		LastSpinCacheTTL: time.Duration(cfg.LastSpinCacheTTLMS) * time.Millisecond,
		AutoRestartDelay: time.Duration(cfg.AutoRestartDelayMS) * time.Millisecond,
		StoreRetryMax:    cfg.StoreRetryMax,
		StoreRetryBase:   time.Duration(cfg.StoreRetryBaseMS) * time.Millisecond,
	}
	if out.RoundDuration <= 0 {
		out.RoundDuration = time.Minute
	}
	if out.SpinAnimation <= 0 {
		out.SpinAnimation = 8 * time.Second
	}
	if out.SpinBuffer < 0 {
		out.SpinBuffer = 0
	}
	if out.SweepInterval <= 0 {
		out.SweepInterval = 15 * time.Second
	}
	if out.LastSpinCacheTTL <= 0 {
		out.LastSpinCacheTTL = 5 * time.Minute
	}
	if out.StoreRetryMax <= 0 {
		out.StoreRetryMax = 3
	}
	if out.StoreRetryBase <= 0 {
		out.StoreRetryBase = 200 * time.Millisecond
	}
	return out
}

// Snapshot is the poll payload. It is always producible; LastSpinResult
// appears only when the machine is idle.
type Snapshot struct {
	RunState        RunState          `json:"run_state"`
	RoundActive     bool              `json:"round_active"`
	IsSpinning      bool              `json:"is_spinning"`
	ResultNumber    *int              `json:"result_number,omitempty"`
	RoundStartedAt  *time.Time        `json:"round_started_at,omitempty"`
	RoundDurationMS int64             `json:"round_duration_ms"`
	SpinDurationMS  int64             `json:"spin_duration_ms"`
	QueueLength     int               `json:"queue_length"`
	LastSpinResult  *store.SpinResult `json:"last_spin_result,omitempty"`
}

type lastSpinCache struct {
	result    *store.SpinResult
	fetchedAt time.Time
}
