package kdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	bin "github.com/saylorsolutions/binmap"
)

const (
	dictVersion      uint16 = 0x0100
	dictVersionMajor uint16 = 0xFF00
)

// sizedBytes maps an int32 length prefix followed by that many bytes.
type sizedBytes struct {
	target *[]byte
}

func (s sizedBytes) Read(r io.Reader, endian binary.ByteOrder) error {
	var n int32
	if err := bin.Int(&n).Read(r, endian); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("invalid length %d", n)
	}
	if rem, ok := r.(interface{ Len() int }); ok && int64(n) > int64(rem.Len()) {
		return fmt.Errorf("length %d exceeds the %d bytes remaining", n, rem.Len())
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	*s.target = buf
	return nil
}

func (s sizedBytes) Write(w io.Writer, endian binary.ByteOrder) error {
	n := int32(len(*s.target))
	if err := bin.Int(&n).Write(w, endian); err != nil {
		return err
	}
	_, err := w.Write(*s.target)
	return err
}

type entry struct {
	typ  byte
	name []byte
	data []byte
}

func (e *entry) body() bin.Mapper {
	return bin.MapSequence(
		sizedBytes{&e.name},
		sizedBytes{&e.data},
	)
}

func validSize(typ ValueType, n int) bool {
	switch typ {
	case TypeUint32, TypeInt32:
		return n == 4
	case TypeUint64, TypeInt64:
		return n == 8
	case TypeBool:
		return n == 1
	case TypeString, TypeBytes:
		return true
	default:
		return false
	}
}

// MarshalBinary encodes the parameters as a versioned dictionary, with the engine UUID stored under "$UUID".
// Entries are written in key order, so equal parameters always encode the same way.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	version := dictVersion
	if err := bin.Int(&version).Write(&buf, binary.LittleEndian); err != nil {
		return nil, err
	}
	id := p.id
	first := entry{typ: byte(TypeBytes), name: []byte(uuidKey), data: id[:]}
	if err := writeEntry(&buf, &first); err != nil {
		return nil, err
	}
	for _, k := range p.Keys() {
		if k == uuidKey {
			continue
		}
		v := p.values[k]
		e := entry{typ: byte(v.typ), name: []byte(k), data: v.data}
		if err := writeEntry(&buf, &e); err != nil {
			return nil, err
		}
	}
	term := byte(TypeNone)
	if err := bin.Byte(&term).Write(&buf, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntry(w io.Writer, e *entry) error {
	if err := bin.Byte(&e.typ).Write(w, binary.LittleEndian); err != nil {
		return err
	}
	return e.body().Write(w, binary.LittleEndian)
}

// UnmarshalBinary replaces the contents of p with the encoded parameters.
// Newer minor versions are accepted, a newer major version is rejected.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	var version uint16
	if err := bin.Int(&version).Read(r, binary.LittleEndian); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if version&dictVersionMajor > dictVersion&dictVersionMajor {
		return fmt.Errorf("%w: unsupported version 0x%04x", ErrInvalidData, version)
	}

	var (
		id      uuid.UUID
		foundID bool
		values  = map[string]value{}
	)
	for {
		var e entry
		if err := bin.Byte(&e.typ).Read(r, binary.LittleEndian); err != nil {
			return fmt.Errorf("%w: missing terminator: %v", ErrInvalidData, err)
		}
		typ := ValueType(e.typ)
		if typ == TypeNone {
			break
		}
		if err := e.body().Read(r, binary.LittleEndian); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		if !validSize(typ, len(e.data)) {
			return fmt.Errorf("%w: entry %q has type 0x%02x and length %d", ErrInvalidData, e.name, e.typ, len(e.data))
		}
		name := string(e.name)
		if name == uuidKey {
			if typ != TypeBytes || len(e.data) != len(id) {
				return fmt.Errorf("%w: malformed engine UUID", ErrInvalidData)
			}
			copy(id[:], e.data)
			foundID = true
			continue
		}
		values[name] = value{typ: typ, data: e.data}
	}
	if !foundID {
		return fmt.Errorf("%w: missing engine UUID", ErrInvalidData)
	}
	p.Wipe()
	p.id = id
	p.values = values
	return nil
}
