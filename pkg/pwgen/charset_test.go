package pwgen

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCharSet(t *testing.T) {
	cs := NewCharSet("abc", "cba", "d")
	assert.Equal(t, "abcd", cs.String(), "Duplicates are ignored and order is preserved")
	assert.Equal(t, 4, cs.Len())
	assert.True(t, cs.Contains('c'))

	cs.RemoveRune('b')
	assert.Equal(t, "acd", cs.String())
	assert.False(t, cs.Contains('b'))
	cs.Remove("zd")
	assert.Equal(t, "ac", cs.String())
	assert.Equal(t, 'c', cs.At(1))

	clone := cs.Clone()
	clone.Add("xyz")
	assert.Equal(t, "ac", cs.String(), "Changing a clone must not change the original")
	assert.Equal(t, "acxyz", clone.String())
}

func TestCharSet_AddClass(t *testing.T) {
	cs := NewCharSet()
	assert.True(t, cs.AddClass('d'))
	assert.Equal(t, Digits, cs.String())
	assert.False(t, cs.AddClass('-'))
	assert.Equal(t, Digits, cs.String())

	for code, chars := range classes {
		cs := NewCharSet()
		assert.True(t, cs.AddClass(code))
		assert.Equal(t, utf8.RuneCountInString(chars), cs.Len(), "Class %q has duplicates", code)
	}
}

func TestHighANSI(t *testing.T) {
	chars := HighANSI()
	assert.Equal(t, 94, utf8.RuneCountInString(chars))
	assert.NotContains(t, chars, "\u00ad")
	r, _ := utf8.DecodeRuneInString(chars)
	assert.Equal(t, '¡', r)
	r, _ = utf8.DecodeLastRuneInString(chars)
	assert.Equal(t, 'ÿ', r)
}

func TestProfile_CharSet(t *testing.T) {
	tests := map[string]struct {
		profile  Profile
		expected string
	}{
		"Default":    {profile: DefaultProfile(), expected: UpperCase + LowerCase + Digits},
		"Separators": {profile: Profile{Flags: Minus | Underline | Space}, expected: "-_ "},
		"Additional": {profile: Profile{Flags: DigitChars, Additional: "0ab"}, expected: Digits + "ab"},
		"Brackets":   {profile: Profile{Flags: BracketChars}, expected: Brackets},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.profile.CharSet().String())
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "charset", CharSetMode.String())
	assert.Equal(t, "pattern", PatternMode.String())
	assert.Equal(t, "custom", CustomMode.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
