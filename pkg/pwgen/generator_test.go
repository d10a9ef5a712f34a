package pwgen

import (
	"crypto/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/saylorsolutions/pwcore/pkg/keystream"
	"github.com/saylorsolutions/pwcore/pkg/protect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader is a predictable random source.
type countingReader struct {
	next byte
}

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

func testGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	p, err := protect.NewProtector(protect.WithoutOSMemory())
	require.NoError(t, err)
	g, err := New(rand.Reader, p, opts...)
	require.NoError(t, err)
	return g
}

func generate(t *testing.T, g *Generator, profile Profile) string {
	t.Helper()
	pw, err := g.Generate(profile, nil)
	require.NoError(t, err)
	assert.True(t, pw.IsProtected())
	return pw.ReadString()
}

func TestNew_Neg(t *testing.T) {
	p, err := protect.NewProtector(protect.WithoutOSMemory())
	require.NoError(t, err)

	_, err = New(nil, p)
	assert.Error(t, err)
	_, err = New(rand.Reader, nil)
	assert.ErrorIs(t, err, protect.ErrNilProtector)
	_, err = New(rand.Reader, p, WithCustomPool(nil))
	assert.Error(t, err)
	_, err = New(rand.Reader, p, WithLogger(nil))
	assert.Error(t, err)
}

func TestGenerator_CharSetCoverage(t *testing.T) {
	g := testGenerator(t)
	profile := Profile{Mode: CharSetMode, Length: 20, Flags: AllFlags}
	expected := profile.CharSet()
	profile.prepare(expected)

	seen := map[rune]int{}
	for i := 0; i < 10_000; i++ {
		pw := generate(t, g, profile)
		require.Equal(t, 20, utf8.RuneCountInString(pw))
		for _, r := range pw {
			require.True(t, expected.Contains(r), "Unexpected character %q", r)
			seen[r]++
		}
	}
	assert.Len(t, seen, expected.Len(), "Every character should be generated at least once")
}

func TestGenerator_CharSetOptions(t *testing.T) {
	g := testGenerator(t)
	tests := map[string]struct {
		profile Profile
		allowed string
	}{
		"Digits only": {
			profile: Profile{Length: 32, Flags: DigitChars},
			allowed: Digits,
		},
		"Additional": {
			profile: Profile{Length: 32, Additional: "xyz"},
			allowed: "xyz",
		},
		"Exclude": {
			profile: Profile{Length: 32, Flags: DigitChars, Exclude: "13579"},
			allowed: "02468",
		},
		"No look-alikes": {
			profile: Profile{Length: 64, Flags: Upper | DigitChars, ExcludeLookAlike: true},
			allowed: strings.NewReplacer("O", "", "0", "", "I", "", "1", "").Replace(UpperCase + Digits),
		},
		"Invalid characters removed": {
			profile: Profile{Length: 16, Additional: "ab\t\r\n"},
			allowed: "ab",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				pw := generate(t, g, tc.profile)
				assert.Equal(t, tc.profile.Length, utf8.RuneCountInString(pw))
				for _, r := range pw {
					assert.Contains(t, tc.allowed, string(r))
				}
			}
		})
	}
}

func TestGenerator_NoRepeat(t *testing.T) {
	g := testGenerator(t)

	for i := 0; i < 100; i++ {
		pw := generate(t, g, Profile{Length: 10, Flags: DigitChars, NoRepeat: true})
		seen := map[rune]bool{}
		for _, r := range pw {
			assert.False(t, seen[r], "Character %q repeated in %q", r, pw)
			seen[r] = true
		}
	}

	_, err := g.Generate(Profile{Length: 5, Additional: "abc", NoRepeat: true}, nil)
	assert.ErrorIs(t, err, ErrTooFewCharacters)
}

func TestGenerator_EmptyCharSet(t *testing.T) {
	g := testGenerator(t)
	_, err := g.Generate(Profile{Length: 1}, nil)
	assert.ErrorIs(t, err, ErrTooFewCharacters)

	pw := generate(t, g, Profile{Length: 0})
	assert.Equal(t, "", pw)
}

func TestGenerator_InvalidProfile(t *testing.T) {
	g := testGenerator(t)
	_, err := g.Generate(Profile{Length: -1, Flags: Lower}, nil)
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = g.Generate(Profile{Mode: Mode(42), Length: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestGenerator_Deterministic(t *testing.T) {
	p, err := protect.NewProtector(protect.WithoutOSMemory())
	require.NoError(t, err)
	profile := Profile{Length: 24, Flags: AllFlags}

	for _, alg := range []keystream.Algorithm{keystream.ArcFour, keystream.ChaCha20, keystream.Salsa20} {
		t.Run(alg.String(), func(t *testing.T) {
			a, err := New(&countingReader{}, p, WithAlgorithm(alg))
			require.NoError(t, err)
			b, err := New(&countingReader{}, p, WithAlgorithm(alg))
			require.NoError(t, err)

			first := generate(t, a, profile)
			assert.Equal(t, first, generate(t, b, profile), "The same random source should produce the same password")
			assert.NotEqual(t, first, generate(t, a, profile), "The random source should move forward between passwords")
		})
	}
}

func TestGenerator_EntropyMixing(t *testing.T) {
	p, err := protect.NewProtector(protect.WithoutOSMemory())
	require.NoError(t, err)
	profile := Profile{Length: 32, Flags: Upper | Lower | DigitChars}

	newGen := func() *Generator {
		g, err := New(&countingReader{}, p)
		require.NoError(t, err)
		return g
	}
	plain, err := newGen().Generate(profile, nil)
	require.NoError(t, err)
	mixed, err := newGen().Generate(profile, []byte("mouse movements"))
	require.NoError(t, err)
	again, err := newGen().Generate(profile, []byte("mouse movements"))
	require.NoError(t, err)
	other, err := newGen().Generate(profile, []byte("keyboard timings"))
	require.NoError(t, err)

	assert.NotEqual(t, plain.ReadString(), mixed.ReadString())
	assert.Equal(t, mixed.ReadString(), again.ReadString())
	assert.NotEqual(t, mixed.ReadString(), other.ReadString())
}

func TestDrawer_Uniform(t *testing.T) {
	stream, err := keystream.New([]byte("uniformity"))
	require.NoError(t, err)
	d := &drawer{stream: stream}

	for _, n := range []int{1, 2, 3, 10, 255, 256, 257, 1000} {
		counts := make([]int, n)
		draws := n * 200
		for i := 0; i < draws; i++ {
			v := d.index(n)
			require.True(t, v >= 0 && v < n)
			counts[v]++
		}
		for v, c := range counts {
			assert.Greater(t, c, 100, "Value %d of %d drawn too rarely", v, n)
			assert.Less(t, c, 300, "Value %d of %d drawn too often", v, n)
		}
	}
}

func TestDrawer_Permute(t *testing.T) {
	stream, err := keystream.New([]byte("permutation"))
	require.NoError(t, err)
	d := &drawer{stream: stream}

	first := map[rune]int{}
	for i := 0; i < 3000; i++ {
		chars := []rune("abc")
		d.permute(chars)
		assert.ElementsMatch(t, []rune("abc"), chars)
		first[chars[0]]++
	}
	for _, r := range "abc" {
		assert.InDelta(t, 1000, first[r], 150, "Character %q should lead a third of the time", r)
	}
}
