package xor

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringPad(t *testing.T, key []byte, offset ...int) *RingPad {
	t.Helper()
	pad, err := NewRingPad(key, offset...)
	require.NoError(t, err)
	return pad
}

func TestReadWrite(t *testing.T) {
	data := "A string with some text"
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	var (
		masked bytes.Buffer
		output strings.Builder
	)

	out, err := NewWriter(&masked, ringPad(t, key))
	assert.NoError(t, err)
	n, err := io.Copy(out, strings.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.NotEqual(t, data, masked.String())

	in, err := NewReader(&masked, ringPad(t, key))
	assert.NoError(t, err)
	_, err = io.Copy(&output, in)
	assert.NoError(t, err)
	assert.Equal(t, data, output.String())
}

func TestNilPad(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), nil)
	assert.Error(t, err)
	_, err = NewWriter(io.Discard, nil)
	assert.Error(t, err)
}

func TestWriter_Reset(t *testing.T) {
	var (
		outA bytes.Buffer
		outB bytes.Buffer
		in   = []byte{0x0, 0x1}
		key  = []byte{0x0, 0x1, 0x1, 0x2}
	)
	w, err := NewWriter(&outA, ringPad(t, key, 1))
	assert.NoError(t, err)
	n, err := w.Write(in)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x1, 0x0}, outA.Bytes())

	w.Reset(&outB)
	n, err = w.Write(in)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x1, 0x0}, outB.Bytes())
}

func TestReader_Reset(t *testing.T) {
	var (
		outA = make([]byte, 2)
		outB = make([]byte, 2)
		in   = []byte{0x0, 0x1}
		key  = []byte{0x0, 0x1, 0x1, 0x2}
	)
	r, err := NewReader(bytes.NewReader(in), ringPad(t, key, 1))
	assert.NoError(t, err)
	n, err := r.Read(outA)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x1, 0x0}, outA)

	r.Reset(bytes.NewReader(in))
	n, err = r.Read(outB)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x1, 0x0}, outB)
}
