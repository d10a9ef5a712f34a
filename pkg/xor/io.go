package xor

import (
	"io"
)

// Reader extends io.Reader, but also provides a way to reuse a pad with a different source.
type Reader interface {
	io.Reader
	// Reset will use the provided io.Reader, and rewind the pad if it implements Resetter.
	Reset(source io.Reader)
}

// Writer extends io.Writer, but also provides a way to reuse a pad with a different target.
type Writer interface {
	io.Writer
	// Reset will use the provided io.Writer, and rewind the pad if it implements Resetter.
	Reset(target io.Writer)
}

var _ Reader = (*reader)(nil)

type reader struct {
	source io.Reader
	pad    PadSource
}

func (r *reader) Read(out []byte) (n int, err error) {
	n, err = r.source.Read(out)
	if n > 0 {
		p := r.pad.Bytes(n)
		for i := 0; i < n; i++ {
			out[i] ^= p[i]
		}
		Wipe(p)
	}
	return n, err
}

func (r *reader) Reset(source io.Reader) {
	r.source = source
	if res, ok := r.pad.(Resetter); ok {
		res.Reset()
	}
}

// NewReader constructs a new Reader that will XOR all bytes read with bytes drawn from pad.
func NewReader(r io.Reader, pad PadSource) (Reader, error) {
	if pad == nil {
		return nil, ErrEmptyKey
	}
	return &reader{
		source: r,
		pad:    pad,
	}, nil
}

var _ Writer = (*writer)(nil)

type writer struct {
	target io.Writer
	pad    PadSource
}

// NewWriter constructs a new Writer that will XOR all bytes written with bytes drawn from pad.
func NewWriter(target io.Writer, pad PadSource) (Writer, error) {
	if pad == nil {
		return nil, ErrEmptyKey
	}
	return &writer{
		target: target,
		pad:    pad,
	}, nil
}

func (w *writer) Write(in []byte) (n int, err error) {
	masked := w.pad.Bytes(len(in))
	defer Wipe(masked)
	for i := range in {
		masked[i] ^= in[i]
	}
	return w.target.Write(masked)
}

func (w *writer) Reset(target io.Writer) {
	w.target = target
	if res, ok := w.pad.(Resetter); ok {
		res.Reset()
	}
}
