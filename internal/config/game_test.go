package config

import "testing"

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.RoundDurationMS != 60000 {
		t.Fatalf("RoundDurationMS = %d, want 60000", cfg.RoundDurationMS)
	}
	if cfg.SpinAnimationMS != 8000 {
		t.Fatalf("SpinAnimationMS = %d, want 8000", cfg.SpinAnimationMS)
	}
	if cfg.SpinBufferMS != 2000 {
		t.Fatalf("SpinBufferMS = %d, want 2000", cfg.SpinBufferMS)
	}
	if cfg.LastSpinCacheTTLMS != 300000 {
		t.Fatalf("LastSpinCacheTTLMS = %d, want 300000", cfg.LastSpinCacheTTLMS)
	}
	if cfg.MaxQueueSize != 100 {
		t.Fatalf("MaxQueueSize = %d, want 100", cfg.MaxQueueSize)
	}
	if cfg.AutoRestartDelayMS != 0 {
		t.Fatalf("AutoRestartDelayMS = %d, want 0", cfg.AutoRestartDelayMS)
	}
	if cfg.StoreRetryMax != 3 {
		t.Fatalf("StoreRetryMax = %d, want 3", cfg.StoreRetryMax)
	}
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("ROUND_DURATION_MS", "15000")
	t.Setenv("MAX_QUEUE_SIZE", "5")
	t.Setenv("AUTO_RESTART_DELAY_MS", "30000")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.RoundDurationMS != 15000 {
		t.Fatalf("RoundDurationMS = %d, want 15000", cfg.RoundDurationMS)
	}
	if cfg.MaxQueueSize != 5 {
		t.Fatalf("MaxQueueSize = %d, want 5", cfg.MaxQueueSize)
	}
	if cfg.AutoRestartDelayMS != 30000 {
		t.Fatalf("AutoRestartDelayMS = %d, want 30000", cfg.AutoRestartDelayMS)
	}
}
