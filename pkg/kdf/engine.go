package kdf

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// KeySize is the length of every derived key.
const KeySize = 32

// Engine is a key derivation function configured by Parameters.
type Engine interface {
	// UUID identifies the engine in serialized Parameters.
	UUID() uuid.UUID
	Name() string
	// DefaultParameters returns parameters with default costs and no salt or seed.
	DefaultParameters() *Parameters
	// Randomize sets a fresh salt or seed in p.
	Randomize(p *Parameters) error
	// Transform derives a KeySize key from msg.
	Transform(msg []byte, p *Parameters) ([]byte, error)
	// BestParameters calibrates the cost so a Transform takes about budget on this host.
	// Cancelling ctx stops calibration and returns the best result measured so far.
	BestParameters(ctx context.Context, budget time.Duration) (*Parameters, error)
}

// Observer is notified of every completed Transform.
type Observer func(engine, strategy string, elapsed time.Duration)

type config struct {
	random     io.Reader
	clock      func() time.Time
	logger     *slog.Logger
	observer   Observer
	strategies []string
}

// Option configures an engine.
type Option = func(*config) error

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		random: rand.Reader,
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithRandom sets the source of salts and seeds used by Randomize. The default is crypto/rand.
func WithRandom(src io.Reader) Option {
	return func(c *config) error {
		if src == nil {
			return errors.New("random source cannot be nil")
		}
		c.random = src
		return nil
	}
}

// WithClock overrides the clock used for benchmarking and timing.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		c.clock = clock
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

func WithObserver(obs Observer) Option {
	return func(c *config) error {
		c.observer = obs
		return nil
	}
}

// WithStrategies restricts an engine to the named strategies, in the given order.
// Names unknown to an engine are ignored by it.
func WithStrategies(names ...string) Option {
	return func(c *config) error {
		if len(names) == 0 {
			return errors.New("at least one strategy must be named")
		}
		c.strategies = names
		return nil
	}
}

func (c *config) observe(engine, strategy string, start time.Time) {
	elapsed := c.clock().Sub(start)
	c.logger.Debug("Key derived", "engine", engine, "strategy", strategy, "elapsed", elapsed)
	if c.observer != nil {
		c.observer(engine, strategy, elapsed)
	}
}

func (c *config) randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.random, buf); err != nil {
		return nil, fmt.Errorf("failed to generate random parameter: %w", err)
	}
	return buf, nil
}

type named interface {
	name() string
}

// selectStrategies orders all by the configured names, or returns all if none are configured.
func selectStrategies[T named](c *config, all []T) []T {
	if len(c.strategies) == 0 {
		return all
	}
	var out []T
	for _, n := range c.strategies {
		for _, s := range all {
			if s.name() == n {
				out = append(out, s)
			}
		}
	}
	return out
}

// maximize finds the largest value in [lo, hi] whose trial fits within budget, assuming cost grows with the value.
// The value is doubled until a trial exceeds the budget, then bisected unless pow2 is set.
// lo is returned even if its trial exceeds the budget.
func maximize(ctx context.Context, clock func() time.Time, budget time.Duration, lo, hi uint64, pow2 bool, trial func(v uint64) error) (uint64, error) {
	timed := func(v uint64) (bool, error) {
		start := clock()
		if err := trial(v); err != nil {
			return false, err
		}
		return clock().Sub(start) <= budget, nil
	}

	best, v := lo, lo
	var tooSlow uint64
	for {
		if ctx.Err() != nil {
			return best, nil
		}
		ok, err := timed(v)
		if err != nil {
			return 0, err
		}
		if !ok {
			tooSlow = v
			break
		}
		best = v
		if v >= hi {
			return best, nil
		}
		if v > hi/2 {
			v = hi
		} else {
			v *= 2
		}
	}
	if pow2 || tooSlow == lo {
		return best, nil
	}
	for tooSlow-best > 1 {
		if ctx.Err() != nil {
			return best, nil
		}
		mid := best + (tooSlow-best)/2
		ok, err := timed(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			best = mid
		} else {
			tooSlow = mid
		}
	}
	return best, nil
}
