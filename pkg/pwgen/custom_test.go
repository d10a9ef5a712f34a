package pwgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/saylorsolutions/pwcore/pkg/keystream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

type constantAlgorithm struct {
	id    uuid.UUID
	value string
}

func (c constantAlgorithm) UUID() uuid.UUID { return c.id }
func (c constantAlgorithm) Name() string    { return "Constant" }

func (c constantAlgorithm) Generate(Profile, *keystream.Stream) ([]byte, error) {
	return []byte(c.value), nil
}

func customProfile(id uuid.UUID, length int) Profile {
	return Profile{Mode: CustomMode, CustomAlgorithm: id, Length: length}
}

func TestGenerator_BIP39(t *testing.T) {
	g := testGenerator(t)
	tests := map[string]struct {
		length int
		words  int
	}{
		"Default": {length: 0, words: 12},
		"15":      {length: 15, words: 15},
		"18":      {length: 18, words: 18},
		"21":      {length: 21, words: 21},
		"24":      {length: 24, words: 24},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			phrase := generate(t, g, customProfile(BIP39UUID, tc.length))
			assert.Len(t, strings.Fields(phrase), tc.words)
			assert.True(t, bip39.IsMnemonicValid(phrase), "Invalid mnemonic %q", phrase)
		})
	}

	_, err := g.Generate(customProfile(BIP39UUID, 13), nil)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestGenerator_Base58(t *testing.T) {
	g := testGenerator(t)
	for _, length := range []int{0, 1, 32} {
		encoded := generate(t, g, customProfile(Base58UUID, length))
		decoded, err := base58.Decode(encoded)
		require.NoError(t, err)
		expected := length
		if length == 0 {
			expected = 16
		}
		assert.Len(t, decoded, expected)
	}
}

func TestGenerator_UnknownAlgorithm(t *testing.T) {
	g := testGenerator(t)
	_, err := g.Generate(customProfile(uuid.New(), 0), nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestGenerator_CustomPool(t *testing.T) {
	alg := constantAlgorithm{id: uuid.New(), value: "hunter2"}
	pool, err := NewCustomPool(alg)
	require.NoError(t, err)

	g := testGenerator(t, WithCustomPool(pool))
	assert.Equal(t, "hunter2", generate(t, g, customProfile(alg.id, 0)))

	_, err = g.Generate(customProfile(BIP39UUID, 0), nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm, "Only the configured pool should be used")

	bad := constantAlgorithm{id: uuid.New(), value: "\xff"}
	require.NoError(t, pool.Add(bad))
	_, err = g.Generate(customProfile(bad.id, 0), nil)
	assert.Error(t, err, "Custom output must be valid UTF-8")
}

func TestCustomPool(t *testing.T) {
	pool := DefaultCustomPool()
	algs := pool.Algorithms()
	require.Len(t, algs, 2)
	assert.Equal(t, "Base58", algs[0].Name())
	assert.Equal(t, "BIP39 Mnemonic", algs[1].Name())

	alg, err := pool.Get(BIP39UUID)
	require.NoError(t, err)
	assert.Equal(t, BIP39UUID, alg.UUID())

	assert.Error(t, pool.Add(BIP39{}), "Duplicate UUIDs are rejected")
	assert.Error(t, pool.Add(nil))
	assert.True(t, pool.Remove(BIP39UUID))
	assert.False(t, pool.Remove(BIP39UUID))
	_, err = pool.Get(BIP39UUID)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = NewCustomPool(Base58{}, Base58{})
	assert.Error(t, err)
	assert.NotEqual(t, BIP39UUID, Base58UUID)
}
