package protect

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/chacha20"
)

const (
	// BlockSize is the allocation granularity of protected buffers.
	BlockSize = 16
)

var (
	ErrNilProtector  = errors.New("nil protector")
	ErrInvalidRegion = errors.New("invalid data region")
	ErrInvalidUTF8   = errors.New("string data is not valid UTF-8")
)

type config struct {
	entropy  io.Reader
	osMemory bool
	logger   *slog.Logger
	observer func(Kind)
}

// Option configures a Protector in NewProtector.
// If any Option returns an error, then construction stops and the error is returned.
type Option = func(*config) error

// WithEntropy sets the source used to generate the session key. It defaults to crypto/rand.
// A random.Engine is a good choice here.
func WithEntropy(src io.Reader) Option {
	return func(c *config) error {
		if src == nil {
			return errors.New("entropy source cannot be nil")
		}
		c.entropy = src
		return nil
	}
}

// WithoutOSMemory disables the OS memory backend, forcing the stream cipher fallback.
func WithoutOSMemory() Option {
	return func(c *config) error {
		c.osMemory = false
		return nil
	}
}

// WithLogger sets the logger used to report backend selection.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithBackendObserver registers fn to be called with the backend chosen for every new value.
func WithBackendObserver(fn func(Kind)) Option {
	return func(c *config) error {
		c.observer = fn
		return nil
	}
}

// Protector selects protection backends and creates protected values.
// It holds the session key of the built-in backends, so a single Protector should be shared by the whole application.
type Protector struct {
	mu       sync.RWMutex
	hook     Hook
	builtin  backend
	nextID   atomic.Uint64
	logger   *slog.Logger
	observer func(Kind)
}

// NewProtector creates a Protector, probing for OS memory protection unless disabled with WithoutOSMemory.
func NewProtector(opts ...Option) (*Protector, error) {
	cfg := &config{
		entropy:  rand.Reader,
		osMemory: true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	key := make([]byte, chacha20.KeySize)
	defer wipe(key)
	if _, err := io.ReadFull(cfg.entropy, key); err != nil {
		return nil, fmt.Errorf("failed to generate protection session key: %w", err)
	}

	p := &Protector{
		logger:   cfg.logger,
		observer: cfg.observer,
	}
	if cfg.osMemory {
		sealed := make([]byte, len(key))
		copy(sealed, key)
		osb, err := newOSMemoryBackend(sealed)
		wipe(sealed)
		if err == nil {
			p.builtin = osb
		} else {
			p.logger.Debug("OS memory protection unavailable, falling back", "error", err)
		}
	}
	if p.builtin == nil {
		p.builtin = newStreamBackend(key)
	}
	p.logger.Debug("Protection backend selected", "backend", p.builtin.kind())
	return p, nil
}

// RegisterHook registers an external protection backend.
// It takes priority for values created afterward, existing values keep their backend.
// Passing nil removes the hook.
func (p *Protector) RegisterHook(hook Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hook = hook
}

// Backend reports the backend a protected value would get if it were created now.
func (p *Protector) Backend() Kind {
	return p.selectBackend(true).kind()
}

func (p *Protector) selectBackend(protect bool) backend {
	if !protect {
		return noneBackend{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.hook != nil {
		return hookBackend{hook: p.hook}
	}
	return p.builtin
}

func (p *Protector) newID() uint64 {
	return p.nextID.Add(1)
}

func (p *Protector) observe(k Kind) {
	if p.observer != nil {
		p.observer(k)
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
