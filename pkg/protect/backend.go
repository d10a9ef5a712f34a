package protect

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20"
)

// Kind identifies the protection backend of a value.
type Kind int

const (
	None Kind = iota
	OSMemory
	StreamCipher
	External
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case OSMemory:
		return "os-memory-protect"
	case StreamCipher:
		return "stream-cipher"
	case External:
		return "external"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Mode tells a Hook which direction to transform the buffer.
type Mode int

const (
	Encrypt Mode = iota
	Decrypt
)

// Hook is an externally provided protection backend.
// It must transform buf in place, and applying Decrypt after Encrypt with the same id must restore the original bytes.
type Hook func(buf []byte, mode Mode, id uint64)

var ErrBackendUnavailable = errors.New("protection backend unavailable")

type backend interface {
	kind() Kind
	apply(buf []byte, mode Mode, id uint64)
}

type noneBackend struct{}

func (noneBackend) kind() Kind                       { return None }
func (noneBackend) apply(_ []byte, _ Mode, _ uint64) {}

type hookBackend struct {
	hook Hook
}

func (h hookBackend) kind() Kind { return External }

func (h hookBackend) apply(buf []byte, mode Mode, id uint64) {
	h.hook(buf, mode, id)
}

const (
	domainStream byte = 0x01
	domainOS     byte = 0x02
)

// streamXOR applies the ChaCha20 keystream for id to buf. Encryption and decryption are the same operation.
func streamXOR(key []byte, domain byte, id uint64, buf []byte) {
	var nonce [chacha20.NonceSize]byte
	nonce[0] = domain
	binary.LittleEndian.PutUint64(nonce[4:], id)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		panic(fmt.Sprintf("protect: invalid stream cipher parameters: %v", err))
	}
	c.XORKeyStream(buf, buf)
}

type streamBackend struct {
	key [chacha20.KeySize]byte
}

func newStreamBackend(key []byte) *streamBackend {
	b := new(streamBackend)
	copy(b.key[:], key)
	return b
}

func (s *streamBackend) kind() Kind { return StreamCipher }

func (s *streamBackend) apply(buf []byte, _ Mode, id uint64) {
	streamXOR(s.key[:], domainStream, id, buf)
}

type osMemoryBackend struct {
	enclave *memguard.Enclave
}

// newOSMemoryBackend seals key in a memguard enclave and verifies that it can be opened again.
// memguard wipes key.
func newOSMemoryBackend(key []byte) (b *osMemoryBackend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: %v", ErrBackendUnavailable, r)
		}
	}()
	enclave := memguard.NewEnclave(key)
	if enclave == nil {
		return nil, fmt.Errorf("%w: unable to create enclave", ErrBackendUnavailable)
	}
	lb, err := enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	lb.Destroy()
	return &osMemoryBackend{enclave: enclave}, nil
}

func (o *osMemoryBackend) kind() Kind { return OSMemory }

func (o *osMemoryBackend) apply(buf []byte, _ Mode, id uint64) {
	lb, err := o.enclave.Open()
	if err != nil {
		memguard.SafePanic(fmt.Errorf("%w: %v", ErrBackendUnavailable, err))
	}
	defer lb.Destroy()
	streamXOR(lb.Bytes(), domainOS, id, buf)
}
