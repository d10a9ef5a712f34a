package random

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saylorsolutions/pwcore/pkg/protect"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

const (
	BlockSize = sha256.Size
	PoolSize  = sha512.Size
)

// Option configures an Engine in New.
type Option = func(*Engine) error

// WithSource sets the random source mixed into every block. The default is crypto/rand.
func WithSource(src io.Reader) Option {
	return func(e *Engine) error {
		if src == nil {
			return errors.New("random source cannot be nil")
		}
		e.source = src
		return nil
	}
}

// WithClock overrides the wall clock used to seed the counter and the fallback entropy.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		e.clock = clock
		return nil
	}
}

// WithLogger sets the logger used to report source failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// WithProtector sets the Protector that holds the entropy pool.
// By default the Engine creates its own, keyed from crypto/rand.
func WithProtector(p *protect.Protector) Option {
	return func(e *Engine) error {
		if p == nil {
			return protect.ErrNilProtector
		}
		e.protector = p
		return nil
	}
}

// Engine is a thread safe cryptographically secure random byte source.
type Engine struct {
	mu        sync.Mutex
	pool      *protect.Binary
	counter   uint64
	emitted   atomic.Uint64
	source    io.Reader
	clock     func() time.Time
	logger    *slog.Logger
	protector *protect.Protector
	warnOnce  sync.Once
}

// New creates an Engine and seeds its pool from system entropy and the source.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		source: rand.Reader,
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.protector == nil {
		p, err := protect.NewProtector(protect.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create pool protector: %w", err)
		}
		e.protector = p
	}
	e.counter = uint64(e.clock().UnixNano())

	seed := make([]byte, BlockSize)
	defer xor.Wipe(seed)
	e.fill(seed)
	h := sha512.New()
	_, _ = h.Write(systemEntropy(e.clock()))
	_, _ = h.Write(seed)
	pool := h.Sum(nil)
	defer xor.Wipe(pool)
	if err := e.setPool(pool); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) setPool(pool []byte) error {
	next, err := e.protector.NewBinary(pool, true)
	if err != nil {
		return fmt.Errorf("failed to protect entropy pool: %w", err)
	}
	if e.pool != nil {
		e.pool.Destroy()
	}
	e.pool = next
	return nil
}

// fill reads len(buf) bytes from the source, replacing them with hashed system entropy if the source fails.
func (e *Engine) fill(buf []byte) {
	_, err := io.ReadFull(e.source, buf)
	if err == nil {
		return
	}
	e.warnOnce.Do(func() {
		e.logger.Warn("Random source failed, falling back to system entropy", "error", err)
	})
	fallback := systemEntropy(e.clock())
	defer xor.Wipe(fallback)
	for i := 0; i < len(buf); i += len(fallback) {
		copy(buf[i:], fallback)
		next := sha512.Sum512(fallback)
		copy(fallback, next[:])
	}
}

// AddEntropy folds b into the pool. Inputs longer than PoolSize are hashed first.
func (e *Engine) AddEntropy(b []byte) {
	if len(b) == 0 {
		return
	}
	if len(b) > PoolSize {
		sum := sha512.Sum512(b)
		defer xor.Wipe(sum[:])
		b = sum[:]
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	pool := e.pool.Read()
	defer xor.Wipe(pool)
	h := sha512.New()
	_, _ = h.Write(pool)
	_, _ = h.Write(b)
	next := h.Sum(nil)
	defer xor.Wipe(next)
	if err := e.setPool(next); err != nil {
		panic(err)
	}
}

// block generates the next output block from the decrypted pool. e.mu must be held.
func (e *Engine) block(pool []byte, out *[BlockSize]byte) {
	e.counter++
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], e.counter)

	src := make([]byte, BlockSize)
	defer xor.Wipe(src)
	e.fill(src)

	h := sha256.New()
	_, _ = h.Write(pool)
	_, _ = h.Write(ctr[:])
	_, _ = h.Write(src)
	h.Sum(out[:0])
}

// Read fills p with random bytes. It never returns an error.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(p) == 0 {
		return 0, nil
	}
	pool := e.pool.Read()
	defer xor.Wipe(pool)
	var blk [BlockSize]byte
	defer xor.Wipe(blk[:])
	for i := 0; i < len(p); i += BlockSize {
		e.block(pool, &blk)
		copy(p[i:], blk[:])
	}
	e.emitted.Add(uint64(len(p)))
	return len(p), nil
}

// Bytes returns n random bytes.
func (e *Engine) Bytes(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	_, _ = e.Read(out)
	return out
}

// BytesEmitted returns the number of bytes produced over the Engine's lifetime.
func (e *Engine) BytesEmitted() uint64 {
	return e.emitted.Load()
}
