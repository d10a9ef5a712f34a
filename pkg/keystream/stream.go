package keystream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Algorithm selects the generator behind a Stream.
type Algorithm int

const (
	ArcFour Algorithm = iota + 1
	ChaCha20
	Salsa20
)

func (a Algorithm) String() string {
	switch a {
	case ArcFour:
		return "arcfour"
	case ChaCha20:
		return "chacha20"
	case Salsa20:
		return "salsa20"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

var (
	ErrEmptyKey         = errors.New("keystream key cannot be empty")
	ErrUnknownAlgorithm = errors.New("unknown keystream algorithm")
)

type generator interface {
	fill(out []byte)
	wipe()
}

var _ io.Reader = (*Stream)(nil)

// Stream is a deterministic keystream.
// Its state only moves forward, there is no way to rewind it.
type Stream struct {
	mu  sync.Mutex
	alg Algorithm
	gen generator
}

// New creates an ArcFour Stream from key.
func New(key []byte) (*Stream, error) {
	return NewAlgorithm(ArcFour, key)
}

// NewAlgorithm creates a Stream using the given algorithm.
// The key is not retained.
func NewAlgorithm(alg Algorithm, key []byte) (*Stream, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	var gen generator
	switch alg {
	case ArcFour:
		gen = newArcFour(key)
	case ChaCha20:
		g, err := newChaCha20(key)
		if err != nil {
			return nil, err
		}
		gen = g
	case Salsa20:
		gen = newSalsa20(key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	return &Stream{alg: alg, gen: gen}, nil
}

// Algorithm returns the algorithm of the stream.
func (s *Stream) Algorithm() Algorithm {
	return s.alg
}

// Bytes returns the next n bytes of the keystream.
func (s *Stream) Bytes(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen.fill(out)
	return out
}

// Read fills p with the next len(p) bytes of the keystream. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen.fill(p)
	return len(p), nil
}

// Uint64 consumes exactly 8 bytes and assembles them little-endian.
func (s *Stream) Uint64() uint64 {
	var buf [8]byte
	s.mu.Lock()
	s.gen.fill(buf[:])
	s.mu.Unlock()
	return binary.LittleEndian.Uint64(buf[:])
}

// Close wipes the internal state. The Stream must not be used afterward.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen.wipe()
}
