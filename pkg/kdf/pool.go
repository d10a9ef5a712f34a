package kdf

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Pool is a registry of engines keyed by UUID.
type Pool struct {
	engines map[uuid.UUID]Engine
	order   []Engine
}

// NewPool creates a Pool from engines. Two engines with the same UUID is an error.
func NewPool(engines ...Engine) (*Pool, error) {
	p := &Pool{engines: map[uuid.UUID]Engine{}}
	for _, e := range engines {
		if _, ok := p.engines[e.UUID()]; ok {
			return nil, fmt.Errorf("duplicate KDF engine %s (%s)", e.Name(), e.UUID())
		}
		p.engines[e.UUID()] = e
		p.order = append(p.order, e)
	}
	return p, nil
}

// DefaultPool creates a Pool with AES-KDF, Argon2d, Argon2id and scrypt, all sharing opts.
func DefaultPool(opts ...Option) (*Pool, error) {
	aesKDF, err := NewAESKDF(opts...)
	if err != nil {
		return nil, err
	}
	argon2d, err := NewArgon2(Argon2d, opts...)
	if err != nil {
		return nil, err
	}
	argon2id, err := NewArgon2(Argon2id, opts...)
	if err != nil {
		return nil, err
	}
	sc, err := NewScrypt(opts...)
	if err != nil {
		return nil, err
	}
	return NewPool(aesKDF, argon2d, argon2id, sc)
}

// Get returns the engine with the given UUID.
func (p *Pool) Get(id uuid.UUID) (Engine, error) {
	e, ok := p.engines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, id)
	}
	return e, nil
}

// ByName finds an engine by case-insensitive name.
func (p *Pool) ByName(name string) (Engine, error) {
	for _, e := range p.order {
		if strings.EqualFold(e.Name(), name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Engines returns the registered engines in registration order.
func (p *Pool) Engines() []Engine {
	out := make([]Engine, len(p.order))
	copy(out, p.order)
	return out
}

// Transform derives a key with the engine identified by params.
func (p *Pool) Transform(msg []byte, params *Parameters) ([]byte, error) {
	if params == nil {
		return nil, paramErr(uuidKey, "missing parameters")
	}
	e, err := p.Get(params.UUID())
	if err != nil {
		return nil, err
	}
	return e.Transform(msg, params)
}
