package pwgen

import (
	"strings"
)

const (
	UpperCase       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowerCase       = "abcdefghijklmnopqrstuvwxyz"
	Digits          = "0123456789"
	UpperConsonants = "BCDFGHJKLMNPQRSTVWXYZ"
	LowerConsonants = "bcdfghjklmnpqrstvwxyz"
	UpperVowels     = "AEIOU"
	LowerVowels     = "aeiou"
	Punctuation     = ",.;:"
	Brackets        = "[]{}()<>"
	// PrintableASCIISpecial is every printable ASCII character that isn't a letter, digit or space.
	PrintableASCIISpecial = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	// Special is PrintableASCIISpecial without the characters that have their own profile flag.
	Special  = "!\"#$%&'*+,./:;=?@\\^`|~"
	UpperHex = "0123456789ABCDEF"
	LowerHex = "0123456789abcdef"
	// LookAlike characters are easily confused with each other.
	LookAlike = "O0Il1|"
	// Invalid characters are never generated.
	Invalid = "\t\r\n"
)

// HighANSI returns U+00A1 through U+00FF, without the soft hyphen.
func HighANSI() string {
	var sb strings.Builder
	for r := rune(0xA1); r <= 0xFF; r++ {
		if r == 0xAD {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CharSet is an ordered set of characters, without duplicates.
type CharSet struct {
	chars []rune
	index map[rune]struct{}
}

// NewCharSet creates a set with the characters of each string, in order.
func NewCharSet(s ...string) *CharSet {
	c := &CharSet{index: map[rune]struct{}{}}
	for _, str := range s {
		c.Add(str)
	}
	return c
}

func (c *CharSet) AddRune(r rune) {
	if _, ok := c.index[r]; ok {
		return
	}
	c.index[r] = struct{}{}
	c.chars = append(c.chars, r)
}

func (c *CharSet) Add(s string) {
	for _, r := range s {
		c.AddRune(r)
	}
}

func (c *CharSet) RemoveRune(r rune) {
	if _, ok := c.index[r]; !ok {
		return
	}
	delete(c.index, r)
	for i, existing := range c.chars {
		if existing == r {
			c.chars = append(c.chars[:i], c.chars[i+1:]...)
			return
		}
	}
}

func (c *CharSet) Remove(s string) {
	for _, r := range s {
		c.RemoveRune(r)
	}
}

func (c *CharSet) Contains(r rune) bool {
	_, ok := c.index[r]
	return ok
}

func (c *CharSet) Len() int {
	return len(c.chars)
}

func (c *CharSet) At(i int) rune {
	return c.chars[i]
}

func (c *CharSet) String() string {
	return string(c.chars)
}

func (c *CharSet) Clone() *CharSet {
	clone := &CharSet{
		chars: make([]rune, len(c.chars)),
		index: make(map[rune]struct{}, len(c.index)),
	}
	copy(clone.chars, c.chars)
	for r := range c.index {
		clone.index[r] = struct{}{}
	}
	return clone
}

// classes maps each pattern code to its characters.
var classes = map[rune]string{
	'a': LowerCase + Digits,
	'A': LowerCase + UpperCase + Digits,
	'U': UpperCase + Digits,
	'c': LowerConsonants,
	'C': LowerConsonants + UpperConsonants,
	'z': UpperConsonants,
	'd': Digits,
	'h': LowerHex,
	'H': UpperHex,
	'l': LowerCase,
	'L': LowerCase + UpperCase,
	'u': UpperCase,
	'p': Punctuation,
	'b': Brackets,
	's': PrintableASCIISpecial,
	'S': UpperCase + LowerCase + Digits + PrintableASCIISpecial,
	'v': LowerVowels,
	'V': LowerVowels + UpperVowels,
	'Z': UpperVowels,
	'x': HighANSI(),
}

// AddClass adds the characters of a pattern code, returning false if code isn't one.
func (c *CharSet) AddClass(code rune) bool {
	chars, ok := classes[code]
	if !ok {
		return false
	}
	c.Add(chars)
	return true
}
