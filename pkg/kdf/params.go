package kdf

import (
	"encoding/binary"
	"slices"

	"github.com/google/uuid"
)

// ValueType is the type tag of a parameter value, using the same codes as the serialized form.
type ValueType byte

const (
	TypeNone   ValueType = 0x00
	TypeUint32 ValueType = 0x04
	TypeUint64 ValueType = 0x05
	TypeBool   ValueType = 0x08
	TypeInt32  ValueType = 0x0C
	TypeInt64  ValueType = 0x0D
	TypeString ValueType = 0x18
	TypeBytes  ValueType = 0x42
)

func (t ValueType) String() string {
	switch t {
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeBool:
		return "bool"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	default:
		return "none"
	}
}

const uuidKey = "$UUID"

// value holds the little endian encoding of a parameter, which is also its serialized form.
type value struct {
	typ  ValueType
	data []byte
}

// Parameters is a typed key/value map identifying a KDF engine and its configuration.
// Byte slices are copied on the way in and out.
type Parameters struct {
	id     uuid.UUID
	values map[string]value
}

// NewParameters creates an empty parameter set for the engine identified by id.
func NewParameters(id uuid.UUID) *Parameters {
	return &Parameters{id: id, values: map[string]value{}}
}

// UUID identifies the engine these parameters are meant for.
func (p *Parameters) UUID() uuid.UUID {
	return p.id
}

func (p *Parameters) set(key string, typ ValueType, data []byte) {
	if old, ok := p.values[key]; ok {
		wipe(old.data)
	}
	p.values[key] = value{typ: typ, data: data}
}

func (p *Parameters) get(key string, typ ValueType) ([]byte, bool) {
	v, ok := p.values[key]
	if !ok || v.typ != typ {
		return nil, false
	}
	return v.data, true
}

// TypeOf returns the type of the value under key, or TypeNone if there isn't one.
func (p *Parameters) TypeOf(key string) ValueType {
	return p.values[key].typ
}

// Keys returns the parameter names in sorted order.
func (p *Parameters) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Remove deletes key, wiping its value.
func (p *Parameters) Remove(key string) {
	if old, ok := p.values[key]; ok {
		wipe(old.data)
		delete(p.values, key)
	}
}

func (p *Parameters) SetBytes(key string, b []byte) {
	data := make([]byte, len(b))
	copy(data, b)
	p.set(key, TypeBytes, data)
}

func (p *Parameters) Bytes(key string) ([]byte, bool) {
	data, ok := p.get(key, TypeBytes)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

func (p *Parameters) SetString(key, s string) {
	p.set(key, TypeString, []byte(s))
}

func (p *Parameters) StringValue(key string) (string, bool) {
	data, ok := p.get(key, TypeString)
	return string(data), ok
}

func (p *Parameters) SetUint32(key string, v uint32) {
	p.set(key, TypeUint32, binary.LittleEndian.AppendUint32(nil, v))
}

func (p *Parameters) Uint32(key string) (uint32, bool) {
	data, ok := p.get(key, TypeUint32)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data), true
}

func (p *Parameters) SetUint64(key string, v uint64) {
	p.set(key, TypeUint64, binary.LittleEndian.AppendUint64(nil, v))
}

func (p *Parameters) Uint64(key string) (uint64, bool) {
	data, ok := p.get(key, TypeUint64)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data), true
}

func (p *Parameters) SetInt32(key string, v int32) {
	p.set(key, TypeInt32, binary.LittleEndian.AppendUint32(nil, uint32(v)))
}

func (p *Parameters) Int32(key string) (int32, bool) {
	data, ok := p.get(key, TypeInt32)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(data)), true
}

func (p *Parameters) SetInt64(key string, v int64) {
	p.set(key, TypeInt64, binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

func (p *Parameters) Int64(key string) (int64, bool) {
	data, ok := p.get(key, TypeInt64)
	if !ok {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(data)), true
}

func (p *Parameters) SetBool(key string, v bool) {
	var b byte
	if v {
		b = 1
	}
	p.set(key, TypeBool, []byte{b})
}

func (p *Parameters) Bool(key string) (bool, bool) {
	data, ok := p.get(key, TypeBool)
	if !ok {
		return false, false
	}
	return data[0] != 0, true
}

// Clone creates a deep copy.
func (p *Parameters) Clone() *Parameters {
	c := NewParameters(p.id)
	for k, v := range p.values {
		data := make([]byte, len(v.data))
		copy(data, v.data)
		c.values[k] = value{typ: v.typ, data: data}
	}
	return c
}

// Wipe zeroes every value and empties the map.
func (p *Parameters) Wipe() {
	for k := range p.values {
		p.Remove(k)
	}
}

// requireUint64 reads a uint64 in [lo, hi].
func (p *Parameters) requireUint64(key string, lo, hi uint64) (uint64, error) {
	switch p.TypeOf(key) {
	case TypeNone:
		return 0, paramErr(key, "missing")
	case TypeUint64:
	default:
		return 0, paramErr(key, "expected uint64, got %s", p.TypeOf(key))
	}
	v, _ := p.Uint64(key)
	if v < lo || v > hi {
		return 0, paramErr(key, "%d is outside of [%d, %d]", v, lo, hi)
	}
	return v, nil
}

// requireUint32 reads a uint32 in [lo, hi].
func (p *Parameters) requireUint32(key string, lo, hi uint32) (uint32, error) {
	switch p.TypeOf(key) {
	case TypeNone:
		return 0, paramErr(key, "missing")
	case TypeUint32:
	default:
		return 0, paramErr(key, "expected uint32, got %s", p.TypeOf(key))
	}
	v, _ := p.Uint32(key)
	if v < lo || v > hi {
		return 0, paramErr(key, "%d is outside of [%d, %d]", v, lo, hi)
	}
	return v, nil
}

// requireBytes reads a byte slice with a length in [lo, hi].
func (p *Parameters) requireBytes(key string, lo, hi int) ([]byte, error) {
	switch p.TypeOf(key) {
	case TypeNone:
		return nil, paramErr(key, "missing")
	case TypeBytes:
	default:
		return nil, paramErr(key, "expected bytes, got %s", p.TypeOf(key))
	}
	v, _ := p.Bytes(key)
	if len(v) < lo || len(v) > hi {
		return nil, paramErr(key, "length %d is outside of [%d, %d]", len(v), lo, hi)
	}
	return v, nil
}

// optionalBytes reads a byte slice that may be absent, absent and empty are treated the same.
func (p *Parameters) optionalBytes(key string) ([]byte, error) {
	switch p.TypeOf(key) {
	case TypeNone:
		return nil, nil
	case TypeBytes:
		v, _ := p.Bytes(key)
		return v, nil
	default:
		return nil, paramErr(key, "expected bytes, got %s", p.TypeOf(key))
	}
}

func (p *Parameters) requireUUID(id uuid.UUID) error {
	if p == nil {
		return paramErr(uuidKey, "missing parameters")
	}
	if p.id != id {
		return paramErr(uuidKey, "parameters are for engine %s, not %s", p.id, id)
	}
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
