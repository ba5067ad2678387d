package config

import "github.com/caarlos0/env/v11"

// GameConfig holds the round/spin timing knobs. Durations are plain
// milliseconds here; the game package converts them once at startup.
type GameConfig struct {
	RoundDurationMS    int `env:"ROUND_DURATION_MS" envDefault:"60000"`
	SpinAnimationMS    int `env:"SPIN_ANIMATION_MS" envDefault:"8000"`
	SpinBufferMS       int `env:"SPIN_BUFFER_MS" envDefault:"2000"`
	ActivityTimeoutMS  int `env:"ACTIVITY_TIMEOUT_MS" envDefault:"120000"`
	SweepIntervalMS    int `env:"SWEEP_INTERVAL_MS" envDefault:"15000"`
	LastSpinCacheTTLMS int `env:"LAST_SPIN_CACHE_TTL_MS" envDefault:"300000"`
	MaxQueueSize       int `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	AutoRestartDelayMS int `env:"AUTO_RESTART_DELAY_MS" envDefault:"0"`
	StoreRetryMax      int `env:"STORE_RETRY_MAX" envDefault:"3"`
	StoreRetryBaseMS   int `env:"STORE_RETRY_BASE_MS" envDefault:"200"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
