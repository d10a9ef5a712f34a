package protect

import (
	"crypto/subtle"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/saylorsolutions/pwcore/pkg/xor"
)

// Binary is a protected byte sequence.
// Its logical length never changes after construction, and its backend is fixed when it's created.
type Binary struct {
	mu        sync.Mutex
	p         *Protector
	be        backend
	id        uint64
	buf       []byte
	length    int
	protect   bool
	encrypted bool
	xorred    *xor.Value
	destroyed bool
}

func alignedLen(n int) int {
	if n == 0 {
		return BlockSize
	}
	return ((n + BlockSize - 1) / BlockSize) * BlockSize
}

func (p *Protector) newBinary(protect bool) *Binary {
	b := &Binary{
		p:       p,
		be:      p.selectBackend(protect),
		id:      p.newID(),
		protect: protect,
	}
	p.observe(b.be.kind())
	runtime.SetFinalizer(b, (*Binary).Destroy)
	return b
}

// NewBinary creates a Binary from a copy of data.
// If protect is false the data is kept in the clear.
func (p *Protector) NewBinary(data []byte, protect bool) (*Binary, error) {
	return p.NewBinaryRegion(data, 0, len(data), protect)
}

// NewBinaryRegion creates a Binary from a copy of data[offset:offset+count].
// Bounds outside of data return ErrInvalidRegion.
func (p *Protector) NewBinaryRegion(data []byte, offset, count int, protect bool) (*Binary, error) {
	if p == nil {
		return nil, ErrNilProtector
	}
	if offset < 0 || count < 0 || offset > len(data) || count > len(data)-offset {
		return nil, fmt.Errorf("%w: offset %d, count %d, length %d", ErrInvalidRegion, offset, count, len(data))
	}
	b := p.newBinary(protect)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(data[offset : offset+count])
	return b, nil
}

// NewBinaryXorred creates a Binary backed by a xor.Value.
// The plain text is only materialized when the value is first read.
func (p *Protector) NewBinaryXorred(value *xor.Value, protect bool) (*Binary, error) {
	if p == nil {
		return nil, ErrNilProtector
	}
	if value == nil {
		return nil, fmt.Errorf("%w: nil xor value", ErrInvalidRegion)
	}
	b := p.newBinary(protect)
	b.xorred = value
	b.length = value.Len()
	return b, nil
}

// store copies data into a fresh buffer and encrypts it if protected. b.mu must be held.
func (b *Binary) store(data []byte) {
	b.length = len(data)
	if !b.protect {
		b.buf = make([]byte, len(data))
		copy(b.buf, data)
		return
	}
	b.buf = make([]byte, alignedLen(len(data)))
	copy(b.buf, data)
	b.be.apply(b.buf, Encrypt, b.id)
	b.encrypted = true
}

// materialize converts a XOR backed value into the standard representation. b.mu must be held.
func (b *Binary) materialize() {
	if b.xorred == nil {
		return
	}
	plain := b.xorred.ReadPlaintext()
	b.xorred.Destroy()
	b.xorred = nil
	b.store(plain)
	xor.Wipe(plain)
}

// Read returns a copy of the plain text.
// The stored buffer is encrypted again before Read returns, and the caller is responsible for wiping the copy.
func (b *Binary) Read() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read()
}

func (b *Binary) read() []byte {
	if b.destroyed {
		return make([]byte, b.length)
	}
	b.materialize()
	out := make([]byte, b.length)
	if !b.encrypted {
		copy(out, b.buf)
		return out
	}
	b.be.apply(b.buf, Decrypt, b.id)
	defer b.be.apply(b.buf, Encrypt, b.id)
	copy(out, b.buf[:b.length])
	return out
}

// ReadXorred returns the plain text masked with the next Len bytes of pads.
// A XOR backed value is re-keyed to the new pad without unmasking it.
func (b *Binary) ReadXorred(pads xor.PadSource) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pad := pads.Bytes(b.length)
	defer xor.Wipe(pad)
	if b.xorred != nil && !b.destroyed {
		return b.xorred.ChangeKey(pad)
	}
	out := b.read()
	if err := xor.Bytes(out, pad); err != nil {
		xor.Wipe(out)
		return nil, err
	}
	return out, nil
}

// WriteXorred streams the plain text to w, masked with the next Len bytes of pads.
func (b *Binary) WriteXorred(w io.Writer, pads xor.PadSource) (int, error) {
	xw, err := xor.NewWriter(w, pads)
	if err != nil {
		return 0, err
	}
	plain := b.Read()
	defer xor.Wipe(plain)
	return xw.Write(plain)
}

// ReadBinaryXorred reads n masked bytes from r and unmasks them with the next n bytes of pads.
// This is the inverse of Binary.WriteXorred, given a pad source in the same position.
func (p *Protector) ReadBinaryXorred(r io.Reader, n int, pads xor.PadSource, protect bool) (*Binary, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidRegion, n)
	}
	xr, err := xor.NewReader(r, pads)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	defer xor.Wipe(buf)
	if _, err := io.ReadFull(xr, buf); err != nil {
		return nil, fmt.Errorf("failed to read masked value: %w", err)
	}
	return p.NewBinary(buf, protect)
}

// Len returns the logical length in bytes.
func (b *Binary) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// IsProtected reports whether protection was requested for this value.
func (b *Binary) IsProtected() bool {
	return b.protect
}

// IsViewable reports whether the value may be shown to a user, which is only the case for unprotected values.
func (b *Binary) IsViewable() bool {
	return !b.protect
}

// Backend returns the backend chosen at construction.
func (b *Binary) Backend() Kind {
	return b.be.kind()
}

// ID returns the per-instance identifier passed to the backend.
func (b *Binary) ID() uint64 {
	return b.id
}

// Equal compares the plain text of b and other in constant time.
// If compareProtection is true, values that differ in protection are never equal.
func (b *Binary) Equal(other *Binary, compareProtection bool) bool {
	if other == nil {
		return false
	}
	if b == other {
		return true
	}
	if compareProtection && b.protect != other.protect {
		return false
	}
	if b.Len() != other.Len() {
		return false
	}
	mine := b.Read()
	defer xor.Wipe(mine)
	theirs := other.Read()
	defer xor.Wipe(theirs)
	return subtle.ConstantTimeCompare(mine, theirs) == 1
}

// Clone creates an independent copy with the same protection setting.
// The clone gets its own ID and whatever backend the Protector selects now.
func (b *Binary) Clone() (*Binary, error) {
	plain := b.Read()
	defer xor.Wipe(plain)
	return b.p.NewBinary(plain, b.protect)
}

// Destroy zero fills the stored buffer. A destroyed value keeps its length and reads as zeros.
// Destroy is also called when the value is garbage collected.
func (b *Binary) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	xor.Wipe(b.buf)
	b.buf = nil
	if b.xorred != nil {
		b.xorred.Destroy()
		b.xorred = nil
	}
	b.destroyed = true
}
