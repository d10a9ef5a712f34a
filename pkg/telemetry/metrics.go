// Package telemetry exposes Prometheus metrics for key derivation, value protection, and random generation.
package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saylorsolutions/pwcore/pkg/protect"
)

const namespace = "pwcore"

// Metrics holds the collectors. Its methods are shaped to be passed directly as observers, for example kdf.WithObserver(m.ObserveTransform).
type Metrics struct {
	reg           prometheus.Registerer
	kdfSeconds    *prometheus.HistogramVec
	protectValues *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("registerer cannot be nil")
	}
	m := &Metrics{
		reg: reg,
		kdfSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kdf",
			Name:      "transform_seconds",
			Help:      "Time taken by key derivation transforms.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"engine", "strategy"}),
		protectValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protect",
			Name:      "values_total",
			Help:      "Protected values created, by backend.",
		}, []string{"backend"}),
	}
	for _, c := range []prometheus.Collector{m.kdfSeconds, m.protectValues} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// ObserveTransform records a completed key derivation transform.
func (m *Metrics) ObserveTransform(engine, strategy string, elapsed time.Duration) {
	m.kdfSeconds.WithLabelValues(engine, strategy).Observe(elapsed.Seconds())
}

// CountValue records a new protected value using the given backend.
func (m *Metrics) CountValue(kind protect.Kind) {
	m.protectValues.WithLabelValues(kind.String()).Inc()
}

// TrackRandom registers a gauge reporting the bytes emitted by a random source, such as random.Engine.BytesEmitted.
func (m *Metrics) TrackRandom(emitted func() uint64) error {
	if emitted == nil {
		return errors.New("emitted function cannot be nil")
	}
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "random",
		Name:      "bytes_emitted",
		Help:      "Bytes produced by the randomness engine.",
	}, func() float64 {
		return float64(emitted())
	})
	if err := m.reg.Register(gauge); err != nil {
		return fmt.Errorf("failed to register random gauge: %w", err)
	}
	return nil
}
