package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/saylorsolutions/pwcore/pkg/pwgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

func testConfig(t *testing.T) config {
	t.Helper()
	errOut = io.Discard
	cfg, err := parseConfig(map[string]string{})
	require.NoError(t, err)
	return cfg
}

func TestParseConfig(t *testing.T) {
	tests := map[string]struct {
		env      map[string]string
		expected config
		err      bool
	}{
		"Defaults": {
			env:      map[string]string{},
			expected: config{BenchTime: time.Second, KDF: "argon2id", Length: 20},
		},
		"Overrides": {
			env: map[string]string{
				"PWCRYPT_BENCH_TIME": "250ms",
				"PWCRYPT_KDF":        "scrypt",
				"PWCRYPT_LENGTH":     "32",
				"PWCRYPT_VERBOSE":    "true",
			},
			expected: config{BenchTime: 250 * time.Millisecond, KDF: "scrypt", Length: 32, Verbose: true},
		},
		"Bad duration":    {env: map[string]string{"PWCRYPT_BENCH_TIME": "soon"}, err: true},
		"Negative length": {env: map[string]string{"PWCRYPT_LENGTH": "-1"}, err: true},
		"Negative time":   {env: map[string]string{"PWCRYPT_BENCH_TIME": "-1s"}, err: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := parseConfig(tc.env)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestParseCharset(t *testing.T) {
	flags, err := parseCharset("upper, Lower,digits,")
	require.NoError(t, err)
	assert.Equal(t, pwgen.Upper|pwgen.Lower|pwgen.DigitChars, flags)

	flags, err = parseCharset("all")
	require.NoError(t, err)
	assert.Equal(t, pwgen.AllFlags, flags)

	_, err = parseCharset("upper,emoji")
	assert.Error(t, err)
}

func TestGenOptions_Profile(t *testing.T) {
	tests := map[string]struct {
		opts genOptions
		mode pwgen.Mode
		err  bool
	}{
		"Charset":            {opts: genOptions{length: 10, charset: "digits"}, mode: pwgen.CharSetMode},
		"Pattern":            {opts: genOptions{pattern: "d{4}"}, mode: pwgen.PatternMode},
		"Custom":             {opts: genOptions{algorithm: "BIP39"}, mode: pwgen.CustomMode},
		"Unknown algorithm":  {opts: genOptions{algorithm: "diceware"}, err: true},
		"Pattern and custom": {opts: genOptions{algorithm: "base58", pattern: "d"}, err: true},
		"Bad charset":        {opts: genOptions{charset: "nope"}, err: true},
		"Negative length":    {opts: genOptions{length: -1, charset: "digits"}, err: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			profile, err := tc.opts.profile()
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mode, profile.Mode)
		})
	}
}

func TestRunGen(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runGen(cfg, []string{"--charset", "digits", "-l", "12", "-n", "5"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Len(t, line, 12)
		assert.Empty(t, strings.Trim(line, "0123456789"))
	}

	out.Reset()
	require.NoError(t, runGen(cfg, []string{"--pattern", "u{4}-d{4}"}, &out))
	pw := strings.TrimSpace(out.String())
	assert.Equal(t, 9, utf8.RuneCountInString(pw))
	assert.Equal(t, "-", pw[4:5])

	out.Reset()
	require.NoError(t, runGen(cfg, []string{"--algorithm", "bip39", "-l", "0"}, &out))
	assert.True(t, bip39.IsMnemonicValid(strings.TrimSpace(out.String())))

	out.Reset()
	require.Equal(t, 20, cfg.Length)
	require.NoError(t, runGen(cfg, []string{"--algorithm", "bip39"}, &out))
	mnemonic := strings.TrimSpace(out.String())
	assert.True(t, bip39.IsMnemonicValid(mnemonic))
	assert.Len(t, strings.Fields(mnemonic), 12, "The configured length doesn't apply to custom algorithms")

	out.Reset()
	require.NoError(t, runGen(cfg, []string{"--algorithm", "bip39", "-l", "24"}, &out))
	assert.Len(t, strings.Fields(out.String()), 24)
	assert.Error(t, runGen(cfg, []string{"--algorithm", "bip39", "-l", "20"}, &out))

	assert.Error(t, runGen(cfg, []string{"-n", "0"}, &out))
	assert.Error(t, runGen(cfg, []string{"--bogus"}, &out))
}

func TestRunDerive(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runDerive(cfg, []string{"--kdf", "aes"}, strings.NewReader("correct horse\n"), &out))
	first := parseDerived(t, out.String())
	assert.Len(t, first["key"], 64)

	out.Reset()
	require.NoError(t, runDerive(cfg, []string{"--params", first["params"]}, strings.NewReader("correct horse\r\n"), &out))
	assert.Equal(t, first, parseDerived(t, out.String()), "The same parameters and password must derive the same key")

	out.Reset()
	require.NoError(t, runDerive(cfg, []string{"--params", first["params"]}, strings.NewReader("wrong horse"), &out))
	assert.NotEqual(t, first["key"], parseDerived(t, out.String())["key"])

	out.Reset()
	require.NoError(t, runDerive(cfg, []string{"--kdf", "aes"}, strings.NewReader("correct horse\n"), &out))
	assert.NotEqual(t, first["key"], parseDerived(t, out.String())["key"], "New parameters use a new random seed")

	assert.Error(t, runDerive(cfg, []string{"--params", "zz"}, strings.NewReader("x"), &out))
	assert.Error(t, runDerive(cfg, []string{"--params", "00"}, strings.NewReader("x"), &out))
	assert.Error(t, runDerive(cfg, []string{"--kdf", "md5"}, strings.NewReader("x"), &out))
}

func parseDerived(t *testing.T, s string) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		key, value, ok := strings.Cut(line, ": ")
		require.True(t, ok, "Malformed line %q", line)
		out[key] = value
	}
	require.Contains(t, out, "key")
	require.Contains(t, out, "params")
	return out
}

func TestRunBench(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	err := runBench(context.Background(), cfg, []string{"--kdf", "aes", "--time", "20ms", "--metrics"}, &out)
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "UUID: c9d9f39a-628a-4460-bf74-0d08c18a4fea")
	assert.Contains(t, text, "R (uint64): ")
	assert.Contains(t, text, "pwcore_kdf_transform_seconds")
	assert.Contains(t, text, "pwcore_random_bytes_emitted")

	assert.Error(t, runBench(context.Background(), cfg, []string{"--kdf", "md5"}, &out))
}

func TestReadPassword(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"Unix":       {input: "secret\nignored", expected: "secret"},
		"Windows":    {input: "secret\r\n", expected: "secret"},
		"No newline": {input: "secret", expected: "secret"},
		"Empty":      {input: "", expected: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			pw, err := readPassword(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(pw))
		})
	}
}

func TestRunLock(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	locked := filepath.Join(dir, "plain.txt.locked")
	unlocked := filepath.Join(dir, "unlocked.txt")
	require.NoError(t, os.WriteFile(plain, []byte("attack at dawn"), 0600))

	require.NoError(t, runLock(cfg, []string{"-i", plain, "-o", locked, "--kdf", "aes"}, strings.NewReader("s3cre+\n"), false))
	data, err := os.ReadFile(locked)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "attack at dawn")

	assert.Error(t, runLock(cfg, []string{"-i", locked, "-o", unlocked}, strings.NewReader("wrong\n"), true))
	require.NoError(t, runLock(cfg, []string{"-i", locked, "-o", unlocked}, strings.NewReader("s3cre+\n"), true))
	data, err = os.ReadFile(unlocked)
	require.NoError(t, err)
	assert.Equal(t, "attack at dawn", string(data))

	assert.Error(t, runLock(cfg, []string{"-i", plain}, strings.NewReader("s3cre+\n"), false))
	assert.Error(t, runLock(cfg, []string{"-i", plain, "-o", plain}, strings.NewReader("s3cre+\n"), false))
}
