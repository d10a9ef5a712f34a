package pwgen

import (
	"fmt"
	"math"

	"github.com/saylorsolutions/pwcore/pkg/keystream"
)

// instruction generates count characters, each drawn independently from set.
type instruction struct {
	set   *CharSet
	count int
}

type patternReader struct {
	runes []rune
	pos   int
}

func (p *patternReader) next() (rune, bool) {
	if p.pos >= len(p.runes) {
		return 0, false
	}
	r := p.runes[p.pos]
	p.pos++
	return r, true
}

func (p *patternReader) peek() (rune, bool) {
	if p.pos >= len(p.runes) {
		return 0, false
	}
	return p.runes[p.pos], true
}

// parsePattern validates the whole pattern before anything is generated.
func parsePattern(pattern string) ([]instruction, error) {
	pr := &patternReader{runes: []rune(pattern)}
	var (
		out   []instruction
		total int
	)
	for {
		ch, ok := pr.next()
		if !ok {
			return out, nil
		}
		set := NewCharSet()
		switch ch {
		case '\\':
			lit, ok := pr.next()
			if !ok {
				return nil, fmt.Errorf("%w: trailing escape", ErrInvalidPattern)
			}
			set.AddRune(lit)
		case '[':
			if err := readCustomClass(pr, set); err != nil {
				return nil, err
			}
		case '{':
			return nil, fmt.Errorf("%w: repetition at position %d has nothing to repeat", ErrInvalidPattern, pr.pos-1)
		default:
			if !set.AddClass(ch) {
				set.AddRune(ch)
			}
		}

		count := 1
		if next, ok := pr.peek(); ok && next == '{' {
			pr.pos++
			n, err := readCount(pr)
			if err != nil {
				return nil, err
			}
			count = n
		}
		if count > math.MaxInt32-total {
			return nil, fmt.Errorf("%w: pattern generates more than %d characters", ErrInvalidPattern, math.MaxInt32)
		}
		total += count
		out = append(out, instruction{set: set, count: count})
	}
}

// readCustomClass reads the contents of "[...]" after the opening bracket.
// A single '^' switches from adding to removing characters.
func readCustomClass(pr *patternReader, set *CharSet) error {
	adding := true
	for {
		ch, ok := pr.next()
		if !ok {
			return fmt.Errorf("%w: unterminated character class", ErrInvalidPattern)
		}
		chars := NewCharSet()
		switch ch {
		case ']':
			return nil
		case '^':
			if !adding {
				return fmt.Errorf("%w: '^' may only appear once in a character class", ErrInvalidPattern)
			}
			adding = false
			continue
		case '\\':
			lit, ok := pr.next()
			if !ok {
				return fmt.Errorf("%w: trailing escape in character class", ErrInvalidPattern)
			}
			chars.AddRune(lit)
		default:
			if !chars.AddClass(ch) {
				chars.AddRune(ch)
			}
		}
		if adding {
			set.Add(chars.String())
		} else {
			set.Remove(chars.String())
		}
	}
}

// readCount reads the digits of "{n}" after the opening brace.
func readCount(pr *patternReader) (int, error) {
	var n int64
	digits := 0
	for {
		ch, ok := pr.next()
		if !ok {
			return 0, fmt.Errorf("%w: unterminated repetition", ErrInvalidPattern)
		}
		if ch == '}' {
			break
		}
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("%w: invalid repetition character %q", ErrInvalidPattern, ch)
		}
		n = n*10 + int64(ch-'0')
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: repetition count is too large", ErrInvalidPattern)
		}
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: empty repetition", ErrInvalidPattern)
	}
	return int(n), nil
}

// patternLength is the number of characters the parsed instructions generate.
func patternLength(instructions []instruction) int {
	n := 0
	for _, inst := range instructions {
		n += inst.count
	}
	return n
}

func generatePattern(profile Profile, stream *keystream.Stream) ([]byte, error) {
	instructions, err := parsePattern(profile.Pattern)
	if err != nil {
		return nil, err
	}
	d := &drawer{stream: stream}
	chars := make([]rune, 0, patternLength(instructions))
	defer func() { wipeRunes(chars) }()
	for _, inst := range instructions {
		for i := 0; i < inst.count; i++ {
			cs := inst.set.Clone()
			profile.prepare(cs)
			if profile.NoRepeat {
				cs.Remove(string(chars))
			}
			ch, err := d.char(cs)
			if err != nil {
				return nil, err
			}
			chars = append(chars, ch)
		}
	}
	if profile.Permute {
		d.permute(chars)
	}
	return encode(chars), nil
}
