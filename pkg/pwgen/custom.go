package pwgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/saylorsolutions/pwcore/pkg/keystream"
	"github.com/saylorsolutions/pwcore/pkg/xor"
	"github.com/tyler-smith/go-bip39"
)

// CustomAlgorithm generates passwords in CustomMode.
// Generate must draw all of its randomness from stream.
type CustomAlgorithm interface {
	UUID() uuid.UUID
	Name() string
	Generate(profile Profile, stream *keystream.Stream) ([]byte, error)
}

var (
	BIP39UUID  = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/saylorsolutions/pwcore/pwgen/bip39"))
	Base58UUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/saylorsolutions/pwcore/pwgen/base58"))
)

// CustomPool is a registry of custom algorithms keyed by UUID.
type CustomPool struct {
	mu   sync.RWMutex
	algs map[uuid.UUID]CustomAlgorithm
}

func NewCustomPool(algs ...CustomAlgorithm) (*CustomPool, error) {
	pool := &CustomPool{algs: map[uuid.UUID]CustomAlgorithm{}}
	for _, alg := range algs {
		if err := pool.Add(alg); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

// DefaultCustomPool has the BIP39 and Base58 algorithms.
func DefaultCustomPool() *CustomPool {
	return &CustomPool{algs: map[uuid.UUID]CustomAlgorithm{
		BIP39UUID:  BIP39{},
		Base58UUID: Base58{},
	}}
}

// Add registers alg. Registering a second algorithm with the same UUID is an error.
func (p *CustomPool) Add(alg CustomAlgorithm) error {
	if alg == nil {
		return errors.New("custom algorithm cannot be nil")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.algs[alg.UUID()]; ok {
		return fmt.Errorf("algorithm '%s' is already registered with UUID %s", existing.Name(), alg.UUID())
	}
	p.algs[alg.UUID()] = alg
	return nil
}

// Remove reports whether an algorithm was registered with id.
func (p *CustomPool) Remove(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.algs[id]
	delete(p.algs, id)
	return ok
}

func (p *CustomPool) Get(id uuid.UUID) (CustomAlgorithm, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	alg, ok := p.algs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, id)
	}
	return alg, nil
}

// Algorithms returns the registered algorithms sorted by name.
func (p *CustomPool) Algorithms() []CustomAlgorithm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]CustomAlgorithm, 0, len(p.algs))
	for _, alg := range p.algs {
		out = append(out, alg)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}

// BIP39 generates an English mnemonic phrase. Profile.Length is the word count, 12 by default.
type BIP39 struct{}

func (BIP39) UUID() uuid.UUID { return BIP39UUID }
func (BIP39) Name() string    { return "BIP39 Mnemonic" }

func (BIP39) Generate(profile Profile, stream *keystream.Stream) ([]byte, error) {
	words := profile.Length
	if words == 0 {
		words = 12
	}
	switch words {
	case 12, 15, 18, 21, 24:
	default:
		return nil, fmt.Errorf("%w: BIP39 word count must be 12, 15, 18, 21, or 24, got %d", ErrInvalidProfile, words)
	}
	entropy := stream.Bytes(words * 4 / 3)
	defer xor.Wipe(entropy)
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return []byte(phrase), nil
}

// Base58 encodes random bytes with the Bitcoin alphabet. Profile.Length is the number of bytes, 16 by default.
type Base58 struct{}

func (Base58) UUID() uuid.UUID { return Base58UUID }
func (Base58) Name() string    { return "Base58" }

func (Base58) Generate(profile Profile, stream *keystream.Stream) ([]byte, error) {
	size := profile.Length
	if size == 0 {
		size = 16
	}
	data := stream.Bytes(size)
	defer xor.Wipe(data)
	return []byte(base58.Encode(data)), nil
}
