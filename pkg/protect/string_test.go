package protect

import (
	"testing"
	"unicode/utf8"

	"github.com/saylorsolutions/pwcore/pkg/xor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_RoundTrip(t *testing.T) {
	for name, p := range protectors(t) {
		t.Run(name, func(t *testing.T) {
			s, err := p.NewString("pässwörd ✓", true)
			require.NoError(t, err)
			assert.Equal(t, 10, s.Len())
			assert.Equal(t, len("pässwörd ✓"), s.Binary().Len())
			assert.Equal(t, "pässwörd ✓", s.ReadString())
			assert.Equal(t, []byte("pässwörd ✓"), s.ReadUTF8())
			assert.False(t, s.IsEmpty())
		})
	}
}

func TestString_InvalidUTF8(t *testing.T) {
	p := streamProtector(t)
	_, err := p.NewStringUTF8([]byte{0xff, 0xfe}, true)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestString_Empty(t *testing.T) {
	p := streamProtector(t)
	s, err := p.NewString("", true)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.ReadString())
}

func TestString_InsertRemove(t *testing.T) {
	p := streamProtector(t)
	s, err := p.NewString("héllo", true)
	require.NoError(t, err)

	ins, err := s.Insert(2, "ÿÿ")
	require.NoError(t, err)
	assert.Equal(t, "héÿÿllo", ins.ReadString())
	assert.Equal(t, 7, ins.Len())
	assert.True(t, ins.IsProtected())
	assert.Equal(t, "héllo", s.ReadString(), "Insert must not modify the original")

	rem, err := ins.Remove(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "hllo", rem.ReadString())

	_, err = s.Insert(6, "x")
	assert.ErrorIs(t, err, ErrInvalidRegion)
	_, err = s.Remove(3, 3)
	assert.ErrorIs(t, err, ErrInvalidRegion)
	_, err = s.Remove(-1, 1)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestString_Equal(t *testing.T) {
	p := streamProtector(t)
	a, err := p.NewString("same", true)
	require.NoError(t, err)
	b, err := p.NewString("same", false)
	require.NoError(t, err)
	assert.True(t, a.Equal(b, false))
	assert.False(t, a.Equal(b, true))
	assert.False(t, a.Equal(nil, false))

	c, err := a.Clone()
	require.NoError(t, err)
	assert.True(t, a.Equal(c, true))
}

func TestString_Xorred(t *testing.T) {
	p := streamProtector(t)
	plain := []byte("ünïcode")
	pad := make([]byte, len(plain))
	for i := range pad {
		pad[i] = byte(i + 1)
	}
	masked := append([]byte{}, plain...)
	require.NoError(t, xor.Bytes(masked, pad))
	v, err := xor.NewValue(masked, pad)
	require.NoError(t, err)

	s, err := p.NewStringXorred(v, true)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Len())
	assert.Equal(t, "ünïcode", s.ReadString())
}

func TestString_XorredInvalidUTF8(t *testing.T) {
	p := streamProtector(t)
	plain := []byte{0xFF, 0xFE, 'a'}
	pad := []byte{0x10, 0x20, 0x30}
	masked := append([]byte{}, plain...)
	require.NoError(t, xor.Bytes(masked, pad))

	newString := func() *String {
		v, err := xor.NewValue(append([]byte{}, masked...), append([]byte{}, pad...))
		require.NoError(t, err)
		s, err := p.NewStringXorred(v, true)
		require.NoError(t, err)
		return s
	}

	s := newString()
	text := s.ReadString()
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "\uFFFD\uFFFDa", text)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, len(text), s.Binary().Len())
	assert.True(t, s.IsProtected())

	s = newString()
	assert.Equal(t, 3, s.Len(), "Counting characters corrects the text too")
	assert.Equal(t, []byte("\uFFFD\uFFFDa"), s.ReadUTF8())

	expected, err := p.NewString("\uFFFD\uFFFDa", true)
	require.NoError(t, err)
	assert.True(t, newString().Equal(expected, true))
}
