package keystream

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/salsa20/salsa"
)

type chaCha20 struct {
	c *chacha20.Cipher
}

func newChaCha20(key []byte) (*chaCha20, error) {
	h := sha512.Sum512(key)
	defer wipe(h[:])
	c, err := chacha20.NewUnauthenticatedCipher(h[:chacha20.KeySize], h[chacha20.KeySize:chacha20.KeySize+chacha20.NonceSize])
	if err != nil {
		return nil, err
	}
	return &chaCha20{c: c}, nil
}

func (c *chaCha20) fill(out []byte) {
	wipe(out)
	c.c.XORKeyStream(out, out)
}

func (c *chaCha20) wipe() {
	// chacha20.Cipher has no method to zero its state.
	c.c = nil
}

var salsa20Nonce = [8]byte{0xE8, 0x30, 0x09, 0x4B, 0x97, 0x20, 0x5D, 0x2A}

const salsaBlockSize = 64

type salsa20 struct {
	key     [32]byte
	counter [16]byte
	block   [salsaBlockSize]byte
	pos     int
}

func newSalsa20(key []byte) *salsa20 {
	s := &salsa20{
		key: sha256.Sum256(key),
		pos: salsaBlockSize,
	}
	copy(s.counter[:8], salsa20Nonce[:])
	return s
}

func (s *salsa20) next() {
	var zero [salsaBlockSize]byte
	salsa.XORKeyStream(s.block[:], zero[:], &s.counter, &s.key)
	n := binary.LittleEndian.Uint64(s.counter[8:])
	binary.LittleEndian.PutUint64(s.counter[8:], n+1)
	s.pos = 0
}

func (s *salsa20) fill(out []byte) {
	for len(out) > 0 {
		if s.pos == salsaBlockSize {
			s.next()
		}
		n := copy(out, s.block[s.pos:])
		s.pos += n
		out = out[n:]
	}
}

func (s *salsa20) wipe() {
	wipe(s.key[:])
	wipe(s.block[:])
	wipe(s.counter[:])
	s.pos = salsaBlockSize
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
