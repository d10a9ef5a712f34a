package xor

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmptyKey       = errors.New("cannot use empty key")
	ErrLengthMismatch = errors.New("data and pad lengths differ")
)

// PadSource produces XOR pad bytes.
// Each call returns the next n bytes, so two sources built from the same key produce the same pad sequence.
type PadSource interface {
	Bytes(n int) []byte
}

// Resetter is implemented by pad sources that can rewind to their initial position.
type Resetter interface {
	Reset()
}

// GenPad reads a pad of the given length from src.
func GenPad(src io.Reader, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("asked to generate a pad of length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("failed to read requested bytes: %w", err)
	}
	return buf, nil
}

var _ PadSource = (*RingPad)(nil)
var _ Resetter = (*RingPad)(nil)

// RingPad cycles through a fixed key.
// Once a key byte is used, the pad progresses to the next byte, wrapping around to the first after the last.
type RingPad struct {
	key  []byte
	init int
	cur  int
}

// NewRingPad creates a RingPad using key, starting at the optional offset.
func NewRingPad(key []byte, offset ...int) (*RingPad, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	p := &RingPad{
		key: key,
	}
	if len(offset) > 0 {
		if offset[0] < 0 || offset[0] >= len(key) {
			return nil, fmt.Errorf("offset %d out of range for provided key of len %d", offset[0], len(key))
		}
		p.init = offset[0]
		p.cur = p.init
	}
	return p, nil
}

func (p *RingPad) next() byte {
	b := p.key[p.cur]
	p.cur = (p.cur + 1) % len(p.key)
	return b
}

func (p *RingPad) Bytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = p.next()
	}
	return out
}

// Reset moves the pad back to its initial offset.
func (p *RingPad) Reset() {
	p.cur = p.init
}

// Bytes XORs pad into data in place.
func Bytes(data, pad []byte) error {
	if len(data) != len(pad) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(data), len(pad))
	}
	for i := range data {
		data[i] ^= pad[i]
	}
	return nil
}

// Wipe overwrites b with zeroes.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
