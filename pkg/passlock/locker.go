package passlock

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
	"github.com/saylorsolutions/pwcore/pkg/kdf"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

const (
	magicBytes     uint16 = 0x1ff1
	maxHeaderBytes        = 1 << 20
	gcmNonceSize          = 12
	gcmTagSize            = 16
)

var (
	ErrEmptyPassPhrase = errors.New("cannot use an empty passphrase")
	ErrInvalidData     = errors.New("unable to use input data")
)

// Passphrase is a human-readable string used to derive a key.
type Passphrase []byte

// Encrypted is an encrypted payload, including the header needed to derive its key.
type Encrypted []byte

// Plaintext is an unencrypted payload.
type Plaintext []byte

// header is the authenticated prefix of an Encrypted payload.
type header struct {
	magic  uint16
	params []byte
}

func (h *header) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&h.magic),
		paramBytes{&h.params},
	)
}

// paramBytes maps a uint32 length prefix followed by serialized kdf.Parameters.
type paramBytes struct {
	target *[]byte
}

func (p paramBytes) Read(r io.Reader, endian binary.ByteOrder) error {
	var n uint32
	if err := bin.Int(&n).Read(r, endian); err != nil {
		return err
	}
	if n > maxHeaderBytes {
		return fmt.Errorf("%w: parameter header is too large", ErrInvalidData)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	*p.target = buf
	return nil
}

func (p paramBytes) Write(w io.Writer, endian binary.ByteOrder) error {
	n := uint32(len(*p.target))
	if err := bin.Int(&n).Write(w, endian); err != nil {
		return err
	}
	_, err := w.Write(*p.target)
	return err
}

type LockerOpt = func(*Locker) error

// WithEngine selects the engine used by Lock by name, such as "scrypt" or "AES-KDF".
func WithEngine(name string) LockerOpt {
	return func(l *Locker) error {
		e, err := l.pool.ByName(name)
		if err != nil {
			return err
		}
		l.engine = e
		return nil
	}
}

// WithParameters makes Lock start from a copy of params, instead of the engine's defaults.
// The engine is selected by the parameters' UUID, and the random parts are replaced for every payload.
func WithParameters(params *kdf.Parameters) LockerOpt {
	return func(l *Locker) error {
		if params == nil {
			return errors.New("parameters cannot be nil")
		}
		e, err := l.pool.Get(params.UUID())
		if err != nil {
			return err
		}
		l.engine = e
		l.template = params.Clone()
		return nil
	}
}

// WithRandom sets the source of GCM nonces. The default is crypto/rand.
func WithRandom(src io.Reader) LockerOpt {
	return func(l *Locker) error {
		if src == nil {
			return errors.New("random source cannot be nil")
		}
		l.random = src
		return nil
	}
}

// Locker encrypts and decrypts payloads with passphrase derived keys.
type Locker struct {
	pool     *kdf.Pool
	engine   kdf.Engine
	template *kdf.Parameters
	random   io.Reader
}

// NewLocker creates a Locker deriving keys with pool, using Argon2id by default.
func NewLocker(pool *kdf.Pool, opts ...LockerOpt) (*Locker, error) {
	if pool == nil {
		return nil, errors.New("KDF pool cannot be nil")
	}
	l := &Locker{
		pool:   pool,
		random: rand.Reader,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.engine == nil {
		e, err := pool.Get(kdf.Argon2idUUID)
		if err != nil {
			return nil, err
		}
		l.engine = e
	}
	return l, nil
}

func (l *Locker) newParameters() (*kdf.Parameters, error) {
	var params *kdf.Parameters
	if l.template != nil {
		params = l.template.Clone()
	} else {
		params = l.engine.DefaultParameters()
	}
	if err := l.engine.Randomize(params); err != nil {
		params.Wipe()
		return nil, err
	}
	return params, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Lock encrypts data with a key derived from pass, using freshly randomized parameters.
func (l *Locker) Lock(pass Passphrase, data Plaintext) (Encrypted, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassPhrase
	}
	params, err := l.newParameters()
	if err != nil {
		return nil, err
	}
	defer params.Wipe()
	encoded, err := params.MarshalBinary()
	if err != nil {
		return nil, err
	}
	key, err := l.pool.Transform(pass, params)
	if err != nil {
		return nil, err
	}
	defer xor.Wipe(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	h := header{magic: magicBytes, params: encoded}
	if err := h.mapper().Write(&buf, binary.LittleEndian); err != nil {
		return nil, err
	}
	ad := bytes.Clone(buf.Bytes())
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(l.random, nonce); err != nil {
		return nil, err
	}
	buf.Write(nonce)
	return gcm.Seal(buf.Bytes(), nonce, data, ad), nil
}

// readHeader splits data into its parameters, the authenticated header bytes, and the remaining nonce and cipher text.
func readHeader(data Encrypted) (*kdf.Parameters, []byte, []byte, error) {
	r := bytes.NewReader(data)
	var h header
	if err := h.mapper().Read(r, binary.LittleEndian); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if h.magic != magicBytes {
		return nil, nil, nil, fmt.Errorf("%w: unrecognized header", ErrInvalidData)
	}
	params := new(kdf.Parameters)
	if err := params.UnmarshalBinary(h.params); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	headerLen := len(data) - r.Len()
	return params, data[:headerLen], data[headerLen:], nil
}

// Parameters returns the KDF parameters stored in an encrypted payload's header.
func Parameters(data Encrypted) (*kdf.Parameters, error) {
	params, _, _, err := readHeader(data)
	return params, err
}

// Unlock derives the payload's key from pass and decrypts it.
// An incorrect passphrase and a tampered payload both fail authentication.
func (l *Locker) Unlock(pass Passphrase, data Encrypted) (Plaintext, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassPhrase
	}
	params, ad, rest, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	defer params.Wipe()
	if len(rest) < gcmNonceSize+gcmTagSize {
		return nil, fmt.Errorf("%w: payload is too short", ErrInvalidData)
	}
	key, err := l.pool.Transform(pass, params)
	if err != nil {
		return nil, err
	}
	defer xor.Wipe(key)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, cipherText := rest[:gcmNonceSize], rest[gcmNonceSize:]
	return gcm.Open(nil, nonce, cipherText, ad)
}
