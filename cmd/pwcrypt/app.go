package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/saylorsolutions/pwcore/pkg/kdf"
	"github.com/saylorsolutions/pwcore/pkg/protect"
	"github.com/saylorsolutions/pwcore/pkg/pwgen"
	"github.com/saylorsolutions/pwcore/pkg/random"
	"github.com/saylorsolutions/pwcore/pkg/telemetry"
)

// app wires the core packages together, with one random engine feeding everything.
type app struct {
	cfg       config
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *telemetry.Metrics
	random    *random.Engine
	protector *protect.Protector
	kdfs      *kdf.Pool
	generator *pwgen.Generator
}

func newApp(cfg config, logOut io.Writer) (*app, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	registry := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	engine, err := random.New(random.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to start random engine: %w", err)
	}
	if err := metrics.TrackRandom(engine.BytesEmitted); err != nil {
		return nil, err
	}
	protector, err := protect.NewProtector(
		protect.WithEntropy(engine),
		protect.WithLogger(logger),
		protect.WithBackendObserver(metrics.CountValue),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create protector: %w", err)
	}
	kdfs, err := kdf.DefaultPool(
		kdf.WithRandom(engine),
		kdf.WithLogger(logger),
		kdf.WithObserver(metrics.ObserveTransform),
	)
	if err != nil {
		return nil, err
	}
	generator, err := pwgen.New(engine, protector, pwgen.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("Initialized", "backend", protector.Backend())
	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		metrics:   metrics,
		random:    engine,
		protector: protector,
		kdfs:      kdfs,
		generator: generator,
	}, nil
}

var kdfAliases = map[string]string{
	"aes":    "AES-KDF",
	"aeskdf": "AES-KDF",
}

// engine looks up a KDF engine by name or alias, case-insensitively.
func (a *app) engine(name string) (kdf.Engine, error) {
	if alias, ok := kdfAliases[strings.ToLower(name)]; ok {
		name = alias
	}
	return a.kdfs.ByName(name)
}

func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
