package config

import "github.com/caarlos0/env/v11"

// LogConfig selects the wheel server's log output. With LOG_FILE unset
// everything goes to stdout; with it set, the file is capped at
// LOG_MAX_MB and started over when full.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	return cfg, env.Parse(&cfg)
}
