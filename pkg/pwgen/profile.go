package pwgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Mode selects how a Profile generates passwords.
type Mode int

const (
	CharSetMode Mode = iota
	PatternMode
	CustomMode
)

func (m Mode) String() string {
	switch m {
	case CharSetMode:
		return "charset"
	case PatternMode:
		return "pattern"
	case CustomMode:
		return "custom"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Flags select the character classes used in CharSetMode.
type Flags uint16

const (
	Upper Flags = 1 << iota
	Lower
	DigitChars
	SpecialChars
	Minus
	Underline
	Space
	BracketChars
	HighANSIChars

	AllFlags = Upper | Lower | DigitChars | SpecialChars | Minus | Underline | Space | BracketChars | HighANSIChars
)

// Profile describes a single password generation request.
type Profile struct {
	Name string
	Mode Mode
	// Length is the number of characters in CharSetMode.
	// Custom algorithms may interpret it differently.
	Length int
	Flags  Flags
	// Additional characters are added to the character set in CharSetMode.
	Additional string
	// Exclude characters are never generated, in any mode except CustomMode.
	Exclude          string
	ExcludeLookAlike bool
	NoRepeat         bool
	Pattern          string
	// Permute shuffles the characters generated from Pattern.
	Permute         bool
	CustomAlgorithm uuid.UUID
}

// DefaultProfile generates 20 letters and digits.
func DefaultProfile() Profile {
	return Profile{
		Mode:   CharSetMode,
		Length: 20,
		Flags:  Upper | Lower | DigitChars,
	}
}

// CharSet builds the character set selected by Flags and Additional.
func (p Profile) CharSet() *CharSet {
	cs := NewCharSet()
	for _, f := range []struct {
		flag  Flags
		chars string
	}{
		{Upper, UpperCase},
		{Lower, LowerCase},
		{DigitChars, Digits},
		{SpecialChars, Special},
		{Minus, "-"},
		{Underline, "_"},
		{Space, " "},
		{BracketChars, Brackets},
		{HighANSIChars, HighANSI()},
	} {
		if p.Flags&f.flag != 0 {
			cs.Add(f.chars)
		}
	}
	cs.Add(p.Additional)
	return cs
}

// prepare removes every character the profile doesn't allow from cs.
func (p Profile) prepare(cs *CharSet) {
	cs.Remove(Invalid)
	if p.ExcludeLookAlike {
		cs.Remove(LookAlike)
	}
	cs.Remove(p.Exclude)
}

func (p Profile) Validate() error {
	if p.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidProfile, p.Length)
	}
	switch p.Mode {
	case CharSetMode, PatternMode, CustomMode:
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidProfile, p.Mode)
	}
}
