package config

import "github.com/caarlos0/env/v11"

// TestConfig selects the database store tests run against. The sqlite
// default needs no external service; set TEST_DB_DRIVER=postgres plus
// TEST_DATABASE_DSN to exercise the postgres backend.
type TestConfig struct {
	TestDBDriver    string `env:"TEST_DB_DRIVER" envDefault:"sqlite"`
	TestDatabaseDSN string `env:"TEST_DATABASE_DSN" envDefault:":memory:"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
