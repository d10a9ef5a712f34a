package xor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mask(plain, pad []byte) []byte {
	out := make([]byte, len(plain))
	for i := range plain {
		out[i] = plain[i] ^ pad[i]
	}
	return out
}

func TestNewValue_Neg(t *testing.T) {
	_, err := NewValue([]byte{1, 2}, []byte{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = NewValue(nil, []byte{})
	assert.Error(t, err)
}

func TestValue_ReadPlaintext(t *testing.T) {
	ct := []byte{0x10, 0x20, 0x30, 0x40}
	pad := []byte{0x01, 0x02, 0x03, 0x04}
	expected := mask(ct, pad)

	v, err := NewValue(ct, pad)
	require.NoError(t, err)
	assert.True(t, v.Masked())
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, expected, v.ReadPlaintext())
	assert.False(t, v.Masked())
	assert.Equal(t, expected, v.ReadPlaintext(), "Reading again must return the same plain text")
}

func TestValue_ChangeKey(t *testing.T) {
	plain := []byte("correct horse battery staple")
	pad := []byte("0123456789abcdef0123456789ab")
	newPad := []byte("zyxwvutsrqponmlkjihgfedcbaZY")
	require.Len(t, pad, len(plain))
	require.Len(t, newPad, len(plain))

	v, err := NewValue(mask(plain, pad), append([]byte(nil), pad...))
	require.NoError(t, err)

	remasked, err := v.ChangeKey(newPad)
	require.NoError(t, err)
	assert.Equal(t, mask(plain, newPad), remasked)
	assert.True(t, v.Masked())

	other, err := NewValue(remasked, append([]byte(nil), newPad...))
	require.NoError(t, err)
	assert.Equal(t, plain, other.ReadPlaintext())

	_, err = v.ChangeKey([]byte{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestValue_ChangeKeyAfterRead(t *testing.T) {
	plain := []byte{1, 2, 3}
	pad := []byte{7, 7, 7}
	v, err := NewValue(mask(plain, pad), pad)
	require.NoError(t, err)
	assert.Equal(t, plain, v.ReadPlaintext())

	newPad := []byte{5, 6, 7}
	remasked, err := v.ChangeKey(newPad)
	require.NoError(t, err)
	assert.Equal(t, mask(plain, newPad), remasked)
}

func TestValue_Equal(t *testing.T) {
	plain := []byte("secret")
	a, err := NewValue(mask(plain, []byte("aaaaaa")), []byte("aaaaaa"))
	require.NoError(t, err)
	b, err := NewValue(mask(plain, []byte("bcdefg")), []byte("bcdefg"))
	require.NoError(t, err)
	c, err := NewValue(mask([]byte("Secret"), []byte("bcdefg")), []byte("bcdefg"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, a.EqualBytes(plain))
	assert.False(t, a.EqualBytes([]byte("secre")))
	assert.True(t, a.Masked(), "Comparison must not unmask the value")
}

func TestValue_Destroy(t *testing.T) {
	data := []byte("secret")
	pad := []byte{1, 2, 3, 4, 5, 6}
	masked := append([]byte{}, data...)
	require.NoError(t, Bytes(masked, pad))
	v, err := NewValue(masked, pad)
	require.NoError(t, err)

	v.Destroy()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, masked)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, pad)
}
