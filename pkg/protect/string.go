package protect

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/saylorsolutions/pwcore/pkg/xor"
)

// String is a protected text value, stored as UTF-8 in a Binary.
// Len counts characters, not bytes.
type String struct {
	bin   *Binary
	mu    sync.Mutex
	runes int
}

// NewString creates a protected String from s.
func (p *Protector) NewString(s string, protect bool) (*String, error) {
	return p.NewStringUTF8([]byte(s), protect)
}

// NewStringUTF8 creates a protected String from a copy of UTF-8 encoded data.
func (p *Protector) NewStringUTF8(data []byte, protect bool) (*String, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	bin, err := p.NewBinary(data, protect)
	if err != nil {
		return nil, err
	}
	return &String{bin: bin, runes: utf8.RuneCount(data)}, nil
}

// NewStringXorred creates a String backed by a XOR masked UTF-8 value.
// The text is validated when it's first used, and each invalid byte is replaced with U+FFFD.
func (p *Protector) NewStringXorred(value *xor.Value, protect bool) (*String, error) {
	bin, err := p.NewBinaryXorred(value, protect)
	if err != nil {
		return nil, err
	}
	return &String{bin: bin, runes: -1}, nil
}

// valid returns the underlying Binary once its text is known to be valid UTF-8.
// A XOR backed value is read the first time, and if it holds invalid UTF-8 it's replaced by a corrected copy.
func (s *String) valid() *Binary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runes >= 0 {
		return s.bin
	}
	data := s.bin.Read()
	defer xor.Wipe(data)
	if utf8.Valid(data) {
		s.runes = utf8.RuneCount(data)
		return s.bin
	}
	fixed := replaceInvalid(data)
	defer xor.Wipe(fixed)
	bin, err := s.bin.p.NewBinary(fixed, s.bin.IsProtected())
	if err != nil {
		return s.bin
	}
	s.bin.Destroy()
	s.bin = bin
	s.runes = utf8.RuneCount(fixed)
	return s.bin
}

// replaceInvalid copies data with every byte that doesn't start a valid sequence replaced by U+FFFD.
func replaceInvalid(data []byte) []byte {
	size := 0
	for i := 0; i < len(data); {
		r, n := utf8.DecodeRune(data[i:])
		size += utf8.RuneLen(r)
		i += n
	}
	out := make([]byte, 0, size)
	for i := 0; i < len(data); {
		r, n := utf8.DecodeRune(data[i:])
		out = utf8.AppendRune(out, r)
		i += n
	}
	return out
}

// Binary returns the underlying protected UTF-8 bytes.
func (s *String) Binary() *Binary {
	return s.valid()
}

// Len returns the number of characters.
// For a XOR backed value this reads the text once to count them.
func (s *String) Len() int {
	s.valid()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runes
}

// IsEmpty reports whether the string has no characters.
func (s *String) IsEmpty() bool {
	return s.valid().Len() == 0
}

// IsProtected reports whether protection was requested for this value.
func (s *String) IsProtected() bool {
	return s.valid().IsProtected()
}

// Backend returns the backend of the underlying Binary.
func (s *String) Backend() Kind {
	return s.valid().Backend()
}

// ReadUTF8 returns a copy of the UTF-8 bytes, which the caller should wipe.
func (s *String) ReadUTF8() []byte {
	return s.valid().Read()
}

// ReadString returns the text as a Go string.
// Go strings can't be wiped, so prefer ReadUTF8 where the caller can control the lifetime of the copy.
func (s *String) ReadString() string {
	data := s.valid().Read()
	defer xor.Wipe(data)
	return string(data)
}

// ReadXorred returns the UTF-8 bytes masked with the next bytes of pads.
func (s *String) ReadXorred(pads xor.PadSource) ([]byte, error) {
	return s.valid().ReadXorred(pads)
}

// Equal compares the text of both strings in constant time.
func (s *String) Equal(other *String, compareProtection bool) bool {
	if other == nil {
		return false
	}
	return s.valid().Equal(other.valid(), compareProtection)
}

// Clone creates an independent copy of s.
func (s *String) Clone() (*String, error) {
	bin, err := s.valid().Clone()
	if err != nil {
		return nil, err
	}
	return &String{bin: bin, runes: s.Len()}, nil
}

// Insert returns a new String with text inserted before the character at pos.
func (s *String) Insert(pos int, text string) (*String, error) {
	runes := s.readRunes()
	defer wipeRunes(runes)
	if pos < 0 || pos > len(runes) {
		return nil, fmt.Errorf("%w: insert position %d, length %d", ErrInvalidRegion, pos, len(runes))
	}
	ins := []rune(text)
	defer wipeRunes(ins)
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:pos]...)
	out = append(out, ins...)
	out = append(out, runes[pos:]...)
	defer wipeRunes(out)
	return s.fromRunes(out)
}

// Remove returns a new String without count characters starting at pos.
func (s *String) Remove(pos, count int) (*String, error) {
	runes := s.readRunes()
	defer wipeRunes(runes)
	if pos < 0 || count < 0 || pos > len(runes) || count > len(runes)-pos {
		return nil, fmt.Errorf("%w: remove position %d, count %d, length %d", ErrInvalidRegion, pos, count, len(runes))
	}
	out := make([]rune, 0, len(runes)-count)
	out = append(out, runes[:pos]...)
	out = append(out, runes[pos+count:]...)
	defer wipeRunes(out)
	return s.fromRunes(out)
}

func (s *String) readRunes() []rune {
	data := s.valid().Read()
	defer xor.Wipe(data)
	runes := make([]rune, 0, utf8.RuneCount(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		runes = append(runes, r)
		data = data[size:]
	}
	return runes
}

func (s *String) fromRunes(runes []rune) (*String, error) {
	size := 0
	for _, r := range runes {
		size += utf8.RuneLen(r)
	}
	buf := make([]byte, 0, size)
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	defer xor.Wipe(buf)
	b := s.valid()
	return b.p.NewStringUTF8(buf, b.IsProtected())
}

// Destroy zero fills the underlying buffer.
func (s *String) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bin.Destroy()
}

func wipeRunes(r []rune) {
	for i := range r {
		r[i] = 0
	}
}
