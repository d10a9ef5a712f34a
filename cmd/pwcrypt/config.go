package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// config holds defaults that may be set in the environment, and overridden by flags.
type config struct {
	BenchTime time.Duration `env:"PWCRYPT_BENCH_TIME" envDefault:"1s"`
	KDF       string        `env:"PWCRYPT_KDF"        envDefault:"argon2id"`
	Length    int           `env:"PWCRYPT_LENGTH"     envDefault:"20"`
	Verbose   bool          `env:"PWCRYPT_VERBOSE"`
}

func parseConfig(environment map[string]string) (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.BenchTime < 0 {
		return errors.New("benchmark time cannot be negative")
	}
	if c.Length < 0 {
		return errors.New("password length cannot be negative")
	}
	return nil
}
