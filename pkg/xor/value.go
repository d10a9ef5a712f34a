package xor

import (
	"fmt"
	"sync"
)

// Value is a secret held as masked data plus the pad that masks it.
// Exactly one plain text is represented.
// Reading it removes the pad for good, replacing the pad with ChangeKey re-masks the data without exposing it.
type Value struct {
	mu   sync.Mutex
	data []byte
	pad  []byte
}

// NewValue creates a Value from masked data and its pad.
// The Value takes ownership of both slices.
func NewValue(masked, pad []byte) (*Value, error) {
	if masked == nil || pad == nil {
		return nil, fmt.Errorf("%w: nil data or pad", ErrLengthMismatch)
	}
	if len(masked) != len(pad) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(masked), len(pad))
	}
	return &Value{data: masked, pad: pad}, nil
}

// Len returns the length of the represented plain text.
func (v *Value) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.data)
}

// Masked reports whether the data is still masked by a pad.
func (v *Value) Masked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.masked()
}

func (v *Value) masked() bool {
	return v.pad != nil && len(v.pad) == len(v.data)
}

// ReadPlaintext removes the pad and returns a copy of the plain text.
// The pad is wiped and discarded, so this is a one-time transformation.
func (v *Value) ReadPlaintext() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.masked() {
		for i := range v.data {
			v.data[i] ^= v.pad[i]
		}
		Wipe(v.pad)
		v.pad = nil
	}
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

// ChangeKey replaces the pad with newPad and returns a copy of the data masked by it.
// The plain text is never materialized while the pad is swapped.
func (v *Value) ChangeKey(newPad []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(newPad) != len(v.data) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(newPad), len(v.data))
	}
	if v.masked() {
		for i := range v.data {
			v.data[i] ^= v.pad[i] ^ newPad[i]
		}
		Wipe(v.pad)
	} else {
		for i := range v.data {
			v.data[i] ^= newPad[i]
		}
	}
	v.pad = make([]byte, len(newPad))
	copy(v.pad, newPad)

	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out, nil
}

// Equal compares the plain text of both values without unmasking either of them.
func (v *Value) Equal(other *Value) bool {
	if other == nil {
		return false
	}
	if v == other {
		return true
	}
	od, op := other.snapshot()
	defer Wipe(od)
	defer Wipe(op)

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.data) != len(od) {
		return false
	}
	var diff byte
	for i := range v.data {
		b := od[i]
		if op != nil {
			b ^= op[i]
		}
		diff |= v.at(i) ^ b
	}
	return diff == 0
}

// snapshot copies the masked data and its pad, pad is nil when the data is not masked.
func (v *Value) snapshot() (data, pad []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	data = make([]byte, len(v.data))
	copy(data, v.data)
	if v.masked() {
		pad = make([]byte, len(v.pad))
		copy(pad, v.pad)
	}
	return data, pad
}

// EqualBytes compares the plain text with b without unmasking the value.
func (v *Value) EqualBytes(b []byte) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(b) != len(v.data) {
		return false
	}
	var diff byte
	for i := range v.data {
		diff |= v.at(i) ^ b[i]
	}
	return diff == 0
}

func (v *Value) at(i int) byte {
	if v.masked() {
		return v.data[i] ^ v.pad[i]
	}
	return v.data[i]
}

// Destroy wipes the data and pad, leaving an empty Value.
func (v *Value) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	Wipe(v.data)
	Wipe(v.pad)
	v.data = v.data[:0]
	v.pad = nil
}
