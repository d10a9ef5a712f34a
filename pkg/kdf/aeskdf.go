package kdf

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

const (
	AESParamRounds = "R"
	AESParamSeed   = "S"

	AESDefaultRounds uint64 = 6000
	aesSeedSize             = 32
	aesBenchStep     uint64 = 3001
)

var AESKDFUUID = uuid.MustParse("c9d9f39a-628a-4460-bf74-0d08c18a4fea")

// aesStrategy applies rounds of AES-256 ECB encryption to both 16 byte halves of data, in place.
type aesStrategy interface {
	name() string
	available() bool
	transform(data *[32]byte, key []byte, rounds uint64) error
}

type hardwareAES struct{}

func (hardwareAES) name() string { return "hardware" }

func (hardwareAES) available() bool {
	return cpu.X86.HasAES || cpu.ARM64.HasAES || cpu.S390X.HasAES
}

func (hardwareAES) transform(data *[32]byte, key []byte, rounds uint64) error {
	c, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	lo, hi := data[:16], data[16:]
	for i := uint64(0); i < rounds; i++ {
		c.Encrypt(lo, lo)
		c.Encrypt(hi, hi)
	}
	return nil
}

// splitAES runs each half on its own goroutine.
type splitAES struct{}

func (splitAES) name() string    { return "split" }
func (splitAES) available() bool { return true }

func (splitAES) transform(data *[32]byte, key []byte, rounds uint64) error {
	var grp errgroup.Group
	for _, half := range [][]byte{data[:16], data[16:]} {
		grp.Go(func() error {
			c, err := aes.NewCipher(key)
			if err != nil {
				return err
			}
			encryptRounds(c, half, rounds)
			return nil
		})
	}
	return grp.Wait()
}

func encryptRounds(c cipher.Block, block []byte, rounds uint64) {
	for i := uint64(0); i < rounds; i++ {
		c.Encrypt(block, block)
	}
}

type portableAES struct{}

func (portableAES) name() string    { return "portable" }
func (portableAES) available() bool { return true }

func (portableAES) transform(data *[32]byte, key []byte, rounds uint64) error {
	if len(key) != aesSeedSize {
		return aes.KeySizeError(len(key))
	}
	c := newAES256(key)
	defer c.wipe()
	lo, hi := data[:16], data[16:]
	for i := uint64(0); i < rounds; i++ {
		c.encrypt(lo, lo)
		c.encrypt(hi, hi)
	}
	return nil
}

// AESKDF derives keys with repeated AES-256 encryption keyed by a 32 byte seed.
type AESKDF struct {
	cfg        *config
	strategies []aesStrategy
}

// NewAESKDF creates an AES-KDF engine.
// Strategies are tried in the order hardware, split, portable unless restricted with WithStrategies.
func NewAESKDF(opts ...Option) (*AESKDF, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	k := &AESKDF{cfg: cfg}
	for _, s := range selectStrategies(cfg, []aesStrategy{hardwareAES{}, splitAES{}, portableAES{}}) {
		if s.available() {
			k.strategies = append(k.strategies, s)
		}
	}
	if len(k.strategies) == 0 {
		return nil, fmt.Errorf("%w: no AES-KDF strategy is available", ErrNoStrategy)
	}
	return k, nil
}

func (k *AESKDF) UUID() uuid.UUID { return AESKDFUUID }
func (k *AESKDF) Name() string    { return "AES-KDF" }

func (k *AESKDF) DefaultParameters() *Parameters {
	p := NewParameters(AESKDFUUID)
	p.SetUint64(AESParamRounds, AESDefaultRounds)
	return p
}

func (k *AESKDF) Randomize(p *Parameters) error {
	if err := p.requireUUID(AESKDFUUID); err != nil {
		return err
	}
	seed, err := k.cfg.randomBytes(aesSeedSize)
	if err != nil {
		return err
	}
	defer wipe(seed)
	p.SetBytes(AESParamSeed, seed)
	return nil
}

// Transform encrypts msg for the configured rounds and returns the SHA-256 of the result.
// A msg that isn't 32 bytes is hashed with SHA-256 first, the seed must be exactly 32 bytes.
func (k *AESKDF) Transform(msg []byte, p *Parameters) ([]byte, error) {
	if err := p.requireUUID(AESKDFUUID); err != nil {
		return nil, err
	}
	rounds, err := p.requireUint64(AESParamRounds, 0, math.MaxUint64)
	if err != nil {
		return nil, err
	}
	seed, err := p.requireBytes(AESParamSeed, aesSeedSize, aesSeedSize)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)

	var data [32]byte
	defer wipe(data[:])
	if len(msg) == len(data) {
		copy(data[:], msg)
	} else {
		data = sha256.Sum256(msg)
	}

	start := k.cfg.clock()
	s, err := k.run(&data, seed, rounds)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data[:])
	k.cfg.observe(k.Name(), s.name(), start)
	return sum[:], nil
}

// run applies the first strategy that succeeds, restoring the input before each attempt.
func (k *AESKDF) run(data *[32]byte, key []byte, rounds uint64) (aesStrategy, error) {
	orig := *data
	defer wipe(orig[:])
	var lastErr error
	for _, s := range k.strategies {
		*data = orig
		if err := s.transform(data, key, rounds); err != nil {
			k.cfg.logger.Debug("AES-KDF strategy failed, trying next", "strategy", s.name(), "error", err)
			lastErr = err
			continue
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNoStrategy, lastErr)
}

// BestParameters counts how many rounds complete within budget.
// Elapsed time is only checked between steps of 3001 rounds.
func (k *AESKDF) BestParameters(ctx context.Context, budget time.Duration) (*Parameters, error) {
	p := k.DefaultParameters()
	if err := k.Randomize(p); err != nil {
		return nil, err
	}

	var (
		key  [32]byte
		data [32]byte
	)
	for i := range key {
		key[i] = byte(i)
		data[i] = byte(i)
	}
	s := k.strategies[0]
	var rounds uint64
	start := k.cfg.clock()
	for {
		if err := s.transform(&data, key[:], aesBenchStep); err != nil {
			return nil, err
		}
		if rounds > math.MaxUint64-aesBenchStep {
			rounds = math.MaxUint64
			break
		}
		rounds += aesBenchStep
		if k.cfg.clock().Sub(start) >= budget || ctx.Err() != nil {
			break
		}
	}
	k.cfg.logger.Debug("AES-KDF benchmark complete", "strategy", s.name(), "rounds", rounds, "budget", budget)
	p.SetUint64(AESParamRounds, rounds)
	return p, nil
}
