package kdf

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const (
	Argon2ParamSalt        = "S"
	Argon2ParamParallelism = "P"
	Argon2ParamMemory      = "M"
	Argon2ParamIterations  = "I"
	Argon2ParamVersion     = "V"
	Argon2ParamSecretKey   = "K"
	Argon2ParamAssocData   = "A"

	Argon2DefaultIterations  uint64 = 2
	Argon2DefaultMemory      uint64 = 64 * 1024 * 1024
	Argon2DefaultParallelism uint32 = 2

	argon2Version10 uint32 = 0x10
	argon2Version13 uint32 = 0x13

	argon2MinSalt        = 8
	argon2SaltSize       = 32
	argon2MaxParallelism = 1<<24 - 1
	argon2MemoryUnit     = 1024
	argon2MaxMemory      = math.MaxInt32
)

var (
	Argon2dUUID  = uuid.MustParse("ef636ddf-8c29-444b-91f7-a9a403e30a0c")
	Argon2idUUID = uuid.MustParse("9e298b19-56db-4773-b23d-fc3ec6f0a1e6")
)

// Argon2Type selects the Argon2 variant, the values match the type field of the Argon2 initial hash.
type Argon2Type uint32

const (
	Argon2d  Argon2Type = 0
	Argon2id Argon2Type = 2
)

func (t Argon2Type) String() string {
	switch t {
	case Argon2d:
		return "Argon2d"
	case Argon2id:
		return "Argon2id"
	default:
		return fmt.Sprintf("Argon2Type(%d)", uint32(t))
	}
}

type argon2Strategy interface {
	name() string
	// supports reports whether every parameter of in can be honored.
	supports(in argon2Input) bool
	derive(in argon2Input) []byte
}

// acceleratedArgon2 uses x/crypto, which only implements Argon2id v1.3 without a secret or associated data.
type acceleratedArgon2 struct{}

func (acceleratedArgon2) name() string { return "accelerated" }

func (acceleratedArgon2) supports(in argon2Input) bool {
	return in.typ == Argon2id &&
		in.version == argon2Version13 &&
		len(in.secret) == 0 &&
		len(in.data) == 0 &&
		in.parallelism <= math.MaxUint8
}

func (acceleratedArgon2) derive(in argon2Input) []byte {
	return argon2.IDKey(in.password, in.salt, in.iterations, in.memory, uint8(in.parallelism), in.keyLen)
}

type portableArgon2 struct{}

func (portableArgon2) name() string                 { return "portable" }
func (portableArgon2) supports(argon2Input) bool    { return true }
func (portableArgon2) derive(in argon2Input) []byte { return argon2Portable(in) }

// Argon2 is the Argon2d or Argon2id engine.
type Argon2 struct {
	typ        Argon2Type
	cfg        *config
	strategies []argon2Strategy
}

// NewArgon2 creates an Argon2 engine of the given type.
// Strategies are tried in the order accelerated, portable unless restricted with WithStrategies.
func NewArgon2(typ Argon2Type, opts ...Option) (*Argon2, error) {
	if typ != Argon2d && typ != Argon2id {
		return nil, fmt.Errorf("%w: unsupported Argon2 type %s", ErrUnknownEngine, typ)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	strategies := selectStrategies(cfg, []argon2Strategy{acceleratedArgon2{}, portableArgon2{}})
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: no Argon2 strategy selected", ErrNoStrategy)
	}
	return &Argon2{typ: typ, cfg: cfg, strategies: strategies}, nil
}

func (a *Argon2) UUID() uuid.UUID {
	if a.typ == Argon2d {
		return Argon2dUUID
	}
	return Argon2idUUID
}

func (a *Argon2) Name() string {
	return a.typ.String()
}

func (a *Argon2) DefaultParameters() *Parameters {
	p := NewParameters(a.UUID())
	p.SetUint32(Argon2ParamVersion, argon2Version13)
	p.SetUint64(Argon2ParamIterations, Argon2DefaultIterations)
	p.SetUint64(Argon2ParamMemory, Argon2DefaultMemory)
	p.SetUint32(Argon2ParamParallelism, Argon2DefaultParallelism)
	return p
}

func (a *Argon2) Randomize(p *Parameters) error {
	if err := p.requireUUID(a.UUID()); err != nil {
		return err
	}
	salt, err := a.cfg.randomBytes(argon2SaltSize)
	if err != nil {
		return err
	}
	defer wipe(salt)
	p.SetBytes(Argon2ParamSalt, salt)
	return nil
}

// input validates p in full before any work is done. Memory is stored in bytes and converted to KiB.
func (a *Argon2) input(msg []byte, p *Parameters) (argon2Input, error) {
	var in argon2Input
	if err := p.requireUUID(a.UUID()); err != nil {
		return in, err
	}
	salt, err := p.requireBytes(Argon2ParamSalt, argon2MinSalt, math.MaxInt32)
	if err != nil {
		return in, err
	}
	par, err := p.requireUint32(Argon2ParamParallelism, 1, argon2MaxParallelism)
	if err != nil {
		return in, err
	}
	mem, err := p.requireUint64(Argon2ParamMemory, 8*argon2MemoryUnit*uint64(par), argon2MaxMemory)
	if err != nil {
		return in, err
	}
	if mem%argon2MemoryUnit != 0 {
		return in, paramErr(Argon2ParamMemory, "%d is not a multiple of %d", mem, argon2MemoryUnit)
	}
	iter, err := p.requireUint64(Argon2ParamIterations, 1, math.MaxUint32)
	if err != nil {
		return in, err
	}
	version, err := p.requireUint32(Argon2ParamVersion, argon2Version10, argon2Version13)
	if err != nil {
		return in, err
	}
	if version != argon2Version10 && version != argon2Version13 {
		return in, paramErr(Argon2ParamVersion, "0x%x is not a known version", version)
	}
	secret, err := p.optionalBytes(Argon2ParamSecretKey)
	if err != nil {
		return in, err
	}
	data, err := p.optionalBytes(Argon2ParamAssocData)
	if err != nil {
		return in, err
	}
	return argon2Input{
		typ:         a.typ,
		version:     version,
		password:    msg,
		salt:        salt,
		secret:      secret,
		data:        data,
		iterations:  uint32(iter),
		memory:      uint32(mem / argon2MemoryUnit),
		parallelism: par,
		keyLen:      KeySize,
	}, nil
}

// Transform derives a key with the first strategy that supports every parameter.
func (a *Argon2) Transform(msg []byte, p *Parameters) ([]byte, error) {
	in, err := a.input(msg, p)
	if err != nil {
		return nil, err
	}
	defer wipe(in.secret)
	for _, s := range a.strategies {
		if !s.supports(in) {
			a.cfg.logger.Debug("Argon2 strategy can't honor parameters, trying next", "engine", a.Name(), "strategy", s.name())
			continue
		}
		start := a.cfg.clock()
		key := s.derive(in)
		a.cfg.observe(a.Name(), s.name(), start)
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s v0x%x with secret=%t, associated data=%t", ErrNoStrategy, a.Name(), in.version, len(in.secret) > 0, len(in.data) > 0)
}

// BestParameters keeps the default memory and parallelism, and searches for the highest iteration count that fits within budget.
func (a *Argon2) BestParameters(ctx context.Context, budget time.Duration) (*Parameters, error) {
	p := a.DefaultParameters()
	if err := a.Randomize(p); err != nil {
		return nil, err
	}
	msg := make([]byte, KeySize)
	iter, err := maximize(ctx, a.cfg.clock, budget, 1, math.MaxUint32, false, func(v uint64) error {
		p.SetUint64(Argon2ParamIterations, v)
		key, err := a.Transform(msg, p)
		wipe(key)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.cfg.logger.Debug("Argon2 benchmark complete", "engine", a.Name(), "iterations", iter, "budget", budget)
	p.SetUint64(Argon2ParamIterations, iter)
	return p, nil
}
