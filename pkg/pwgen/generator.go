package pwgen

import (
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/saylorsolutions/pwcore/pkg/keystream"
	"github.com/saylorsolutions/pwcore/pkg/protect"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

var (
	ErrTooFewCharacters = errors.New("too few characters to generate password")
	ErrInvalidPattern   = errors.New("invalid password pattern")
	ErrUnknownAlgorithm = errors.New("unknown password generation algorithm")
	ErrInvalidProfile   = errors.New("invalid password profile")
)

const (
	keySize        = 128
	maxCharSetSize = 1 << 16
)

// Option configures a Generator in New.
type Option = func(*Generator) error

// WithCustomPool sets the pool used to look up algorithms in CustomMode.
// The default pool has BIP39 and Base58.
func WithCustomPool(pool *CustomPool) Option {
	return func(g *Generator) error {
		if pool == nil {
			return errors.New("custom pool cannot be nil")
		}
		g.custom = pool
		return nil
	}
}

// WithAlgorithm selects the keystream algorithm, ArcFour by default.
func WithAlgorithm(alg keystream.Algorithm) Option {
	return func(g *Generator) error {
		g.algorithm = alg
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		g.logger = logger
		return nil
	}
}

// Generator produces protected passwords from a Profile.
type Generator struct {
	random    io.Reader
	protector *protect.Protector
	custom    *CustomPool
	algorithm keystream.Algorithm
	logger    *slog.Logger
}

// New creates a Generator that keys each password's keystream from random, and protects the results with protector.
func New(random io.Reader, protector *protect.Protector, opts ...Option) (*Generator, error) {
	if random == nil {
		return nil, errors.New("random source cannot be nil")
	}
	if protector == nil {
		return nil, protect.ErrNilProtector
	}
	g := &Generator{
		random:    random,
		protector: protector,
		custom:    DefaultCustomPool(),
		algorithm: keystream.ArcFour,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// newStream keys a keystream with random bytes, mixing in the SHA-512 of entropy if given.
func (g *Generator) newStream(entropy []byte) (*keystream.Stream, error) {
	key, err := xor.GenPad(g.random, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keystream key: %w", err)
	}
	defer xor.Wipe(key)
	if len(entropy) > 0 {
		sum := sha512.Sum512(entropy)
		defer xor.Wipe(sum[:])
		if err := xor.Bytes(key[:len(sum)], sum[:]); err != nil {
			return nil, err
		}
	}
	return keystream.NewAlgorithm(g.algorithm, key)
}

// Generate creates a password described by profile.
// Entropy is optional, and only adds to the randomness of the Generator's source.
func (g *Generator) Generate(profile Profile, entropy []byte) (*protect.String, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	stream, err := g.newStream(entropy)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var out []byte
	switch profile.Mode {
	case CharSetMode:
		out, err = generateCharSet(profile, stream)
	case PatternMode:
		out, err = generatePattern(profile, stream)
	case CustomMode:
		out, err = g.generateCustom(profile, stream)
	}
	if err != nil {
		g.logger.Debug("Password generation failed", "mode", profile.Mode, "error", err)
		return nil, err
	}
	defer xor.Wipe(out)
	return g.protector.NewStringUTF8(out, true)
}

func (g *Generator) generateCustom(profile Profile, stream *keystream.Stream) ([]byte, error) {
	alg, err := g.custom.Get(profile.CustomAlgorithm)
	if err != nil {
		return nil, err
	}
	return alg.Generate(profile, stream)
}

// drawer picks uniformly distributed indexes from a keystream with rejection sampling.
type drawer struct {
	stream *keystream.Stream
	buf    [2]byte
}

// index returns a value in [0, n). Sets of up to 256 use one byte per attempt, larger sets use two.
func (d *drawer) index(n int) int {
	if n <= 1 {
		return 0
	}
	if n <= 256 {
		for {
			_, _ = d.stream.Read(d.buf[:1])
			if v := int(d.buf[0]); v < n {
				return v
			}
		}
	}
	for {
		_, _ = d.stream.Read(d.buf[:])
		if v := int(binary.LittleEndian.Uint16(d.buf[:])); v < n {
			return v
		}
	}
}

func (d *drawer) char(cs *CharSet) (rune, error) {
	switch {
	case cs.Len() == 0:
		return 0, ErrTooFewCharacters
	case cs.Len() > maxCharSetSize:
		return 0, fmt.Errorf("%w: character set has %d characters, the maximum is %d", ErrInvalidProfile, cs.Len(), maxCharSetSize)
	}
	return cs.At(d.index(cs.Len())), nil
}

// permute is a Fisher-Yates shuffle, swapping each position with a uniformly drawn position at or after it.
func (d *drawer) permute(chars []rune) {
	for i := 0; i < len(chars)-1; i++ {
		j := i + d.index(len(chars)-i)
		chars[i], chars[j] = chars[j], chars[i]
	}
}

func generateCharSet(profile Profile, stream *keystream.Stream) ([]byte, error) {
	cs := profile.CharSet()
	profile.prepare(cs)
	d := &drawer{stream: stream}
	chars := make([]rune, profile.Length)
	defer wipeRunes(chars)
	for i := range chars {
		ch, err := d.char(cs)
		if err != nil {
			return nil, err
		}
		chars[i] = ch
		if profile.NoRepeat {
			cs.RemoveRune(ch)
		}
	}
	return encode(chars), nil
}

func encode(chars []rune) []byte {
	size := 0
	for _, r := range chars {
		size += utf8.RuneLen(r)
	}
	out := make([]byte, 0, size)
	for _, r := range chars {
		out = utf8.AppendRune(out, r)
	}
	return out
}

func wipeRunes(r []rune) {
	for i := range r {
		r[i] = 0
	}
}
