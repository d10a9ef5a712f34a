package kdf

import (
	"context"
	"math"
	"math/bits"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

const (
	ScryptParamSalt      = "S"
	ScryptParamCost      = "N"
	ScryptParamBlockSize = "r"
	ScryptParamParallel  = "p"

	// ScryptLongDelayCost is sufficient for infrequent key derivation, or cases where the key will be cached for long periods of time.
	ScryptLongDelayCost uint64 = 1 << 20
	// ScryptInteractiveCost balances speed with password cracking resistance, and is the default.
	ScryptInteractiveCost uint64 = 1 << 15

	ScryptDefaultBlockSize uint32 = 8
	ScryptDefaultParallel  uint32 = 1

	scryptSaltSize = 32
	scryptMinCost  = 1 << 10
)

// ScryptUUID is derived from the engine's name, since there's no established identifier for scrypt parameters.
var ScryptUUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/saylorsolutions/pwcore/kdf/scrypt"))

// Scrypt is a memory and CPU hard KDF.
// Memory use is about 128 * N * r bytes.
type Scrypt struct {
	cfg *config
}

func NewScrypt(opts ...Option) (*Scrypt, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Scrypt{cfg: cfg}, nil
}

func (s *Scrypt) UUID() uuid.UUID { return ScryptUUID }
func (s *Scrypt) Name() string    { return "scrypt" }

func (s *Scrypt) DefaultParameters() *Parameters {
	p := NewParameters(ScryptUUID)
	p.SetUint64(ScryptParamCost, ScryptInteractiveCost)
	p.SetUint32(ScryptParamBlockSize, ScryptDefaultBlockSize)
	p.SetUint32(ScryptParamParallel, ScryptDefaultParallel)
	return p
}

func (s *Scrypt) Randomize(p *Parameters) error {
	if err := p.requireUUID(ScryptUUID); err != nil {
		return err
	}
	salt, err := s.cfg.randomBytes(scryptSaltSize)
	if err != nil {
		return err
	}
	defer wipe(salt)
	p.SetBytes(ScryptParamSalt, salt)
	return nil
}

func (s *Scrypt) Transform(msg []byte, p *Parameters) ([]byte, error) {
	if err := p.requireUUID(ScryptUUID); err != nil {
		return nil, err
	}
	salt, err := p.requireBytes(ScryptParamSalt, argon2MinSalt, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	cost, err := p.requireUint64(ScryptParamCost, 2, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	if bits.OnesCount64(cost) != 1 {
		return nil, paramErr(ScryptParamCost, "%d is not a power of 2", cost)
	}
	r, err := p.requireUint32(ScryptParamBlockSize, ScryptDefaultBlockSize, math.MaxUint8)
	if err != nil {
		return nil, err
	}
	par, err := p.requireUint32(ScryptParamParallel, 1, math.MaxUint8)
	if err != nil {
		return nil, err
	}
	if uint64(r)*uint64(par) >= 1<<30 {
		return nil, paramErr(ScryptParamParallel, "r * p must be less than 2^30")
	}

	start := s.cfg.clock()
	key, err := scrypt.Key(msg, salt, int(cost), int(r), int(par), KeySize)
	if err != nil {
		return nil, err
	}
	s.cfg.observe(s.Name(), "x/crypto", start)
	return key, nil
}

// BestParameters doubles N from 1024 while a derivation fits within budget.
func (s *Scrypt) BestParameters(ctx context.Context, budget time.Duration) (*Parameters, error) {
	p := s.DefaultParameters()
	if err := s.Randomize(p); err != nil {
		return nil, err
	}
	msg := make([]byte, KeySize)
	cost, err := maximize(ctx, s.cfg.clock, budget, scryptMinCost, ScryptLongDelayCost, true, func(v uint64) error {
		p.SetUint64(ScryptParamCost, v)
		key, err := s.Transform(msg, p)
		wipe(key)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.SetUint64(ScryptParamCost, cost)
	return p, nil
}
