package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseDSN string `env:"DATABASE_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string   `env:"ADMIN_API_KEY"`
	AdminIDs    []string `env:"ADMIN_IDS" envSeparator:","`

	ResultPushEnabled        bool   `env:"RESULT_PUSH_ENABLED" envDefault:"false"`
	ResultPushConfigPath     string `env:"RESULT_PUSH_CONFIG_PATH"`
	ResultPushConfigJSON     string `env:"RESULT_PUSH_CONFIG_JSON"`
	ResultPushConfigReloadMS int    `env:"RESULT_PUSH_CONFIG_RELOAD_MS" envDefault:"1000"`
	ResultPushWorkers        int    `env:"RESULT_PUSH_WORKERS" envDefault:"4"`
	ResultPushRetryMax       int    `env:"RESULT_PUSH_RETRY_MAX" envDefault:"3"`
	ResultPushRetryBaseMS    int    `env:"RESULT_PUSH_RETRY_BASE_MS" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
