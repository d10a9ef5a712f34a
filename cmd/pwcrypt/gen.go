package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saylorsolutions/pwcore/pkg/pwgen"
)

var charsetNames = map[string]pwgen.Flags{
	"upper":     pwgen.Upper,
	"lower":     pwgen.Lower,
	"digits":    pwgen.DigitChars,
	"special":   pwgen.SpecialChars,
	"minus":     pwgen.Minus,
	"underline": pwgen.Underline,
	"space":     pwgen.Space,
	"brackets":  pwgen.BracketChars,
	"high":      pwgen.HighANSIChars,
	"all":       pwgen.AllFlags,
}

var algorithmNames = map[string]func() pwgen.CustomAlgorithm{
	"bip39":  func() pwgen.CustomAlgorithm { return pwgen.BIP39{} },
	"base58": func() pwgen.CustomAlgorithm { return pwgen.Base58{} },
}

// parseCharset reads a comma separated list of character class names.
func parseCharset(s string) (pwgen.Flags, error) {
	var flags pwgen.Flags
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f, ok := charsetNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown character class '%s'", name)
		}
		flags |= f
	}
	return flags, nil
}

type genOptions struct {
	length     int
	pattern    string
	charset    string
	additional string
	exclude    string
	noRepeat   bool
	lookAlike  bool
	permute    bool
	algorithm  string
}

func (o genOptions) profile() (pwgen.Profile, error) {
	profile := pwgen.Profile{
		Length:           o.length,
		Additional:       o.additional,
		Exclude:          o.exclude,
		ExcludeLookAlike: o.lookAlike,
		NoRepeat:         o.noRepeat,
		Permute:          o.permute,
	}
	switch {
	case o.algorithm != "" && o.pattern != "":
		return profile, errors.New("a pattern cannot be used with a custom algorithm")
	case o.algorithm != "":
		alg, ok := algorithmNames[strings.ToLower(o.algorithm)]
		if !ok {
			return profile, fmt.Errorf("%w: '%s'", pwgen.ErrUnknownAlgorithm, o.algorithm)
		}
		profile.Mode = pwgen.CustomMode
		profile.CustomAlgorithm = alg().UUID()
	case o.pattern != "":
		profile.Mode = pwgen.PatternMode
		profile.Pattern = o.pattern
	default:
		flags, err := parseCharset(o.charset)
		if err != nil {
			return profile, err
		}
		profile.Mode = pwgen.CharSetMode
		profile.Flags = flags
	}
	return profile, profile.Validate()
}

func runGen(cfg config, args []string, out io.Writer) error {
	var (
		helpFlag bool
		count    int
		entropy  string
		opts     genOptions
	)
	flags := newFlagSet("gen", &helpFlag, &cfg)
	flags.IntVarP(&opts.length, "length", "l", cfg.Length, "Number of characters to generate. Custom algorithms interpret this differently: BIP39 uses it as a word count, and Base58 as a byte count. Custom algorithms use their own default unless this is set.")
	flags.StringVarP(&opts.pattern, "pattern", "p", "", "Generate from a pattern, such as 'A{3}-d{2}'.")
	flags.StringVarP(&opts.charset, "charset", "c", "upper,lower,digits", "Comma separated character classes: upper, lower, digits, special, minus, underline, space, brackets, high, or all.")
	flags.StringVarP(&opts.additional, "additional", "a", "", "Extra characters to add to the character set.")
	flags.StringVarP(&opts.exclude, "exclude", "x", "", "Characters that must never be generated.")
	flags.BoolVarP(&opts.noRepeat, "no-repeat", "R", false, "Never generate the same character twice in a password.")
	flags.BoolVarP(&opts.lookAlike, "lookalike", "L", false, "Exclude characters that look alike, such as O and 0.")
	flags.BoolVarP(&opts.permute, "permute", "P", false, "Shuffle the characters generated from a pattern.")
	flags.StringVar(&opts.algorithm, "algorithm", "", "Use a custom algorithm: bip39 or base58.")
	flags.IntVarP(&count, "count", "n", 1, "Number of passwords to generate.")
	flags.StringVarP(&entropy, "entropy", "e", "", "Extra entropy to mix into generation.")
	flags.Usage = func() {
		fmt.Printf(`
Generates passwords, one per line.

USAGE: pwcrypt gen [FLAGS]

FLAGS:
%s
`, flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if helpFlag {
		flags.Usage()
		return nil
	}
	if count < 1 {
		return errors.New("count must be at least 1")
	}
	if opts.algorithm != "" && !flags.Changed("length") {
		opts.length = 0
	}
	profile, err := opts.profile()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, errOut)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		pw, err := a.generator.Generate(profile, []byte(entropy))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, pw.ReadString())
		pw.Destroy()
		if err != nil {
			return err
		}
	}
	return nil
}
