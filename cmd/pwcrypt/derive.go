package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/pwcore/pkg/kdf"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

// readPassword reads the first line of r, without its line ending.
func readPassword(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	trimmed := bytes.TrimRight(line, "\r\n")
	password := make([]byte, len(trimmed))
	copy(password, trimmed)
	xor.Wipe(line)
	return password, nil
}

func runDerive(cfg config, args []string, in io.Reader, out io.Writer) error {
	var (
		helpFlag  bool
		kdfName   string
		paramsHex string
	)
	flags := newFlagSet("derive", &helpFlag, &cfg)
	flags.StringVarP(&kdfName, "kdf", "k", cfg.KDF, "KDF to derive with: aes, argon2d, argon2id, or scrypt. New random parameters are generated.")
	flags.StringVar(&paramsHex, "params", "", "Hex encoded parameters from a previous derivation, to derive the same key again. Overrides --kdf.")
	flags.Usage = func() {
		fmt.Printf(`
Reads a password from the first line of stdin and derives a key from it.
The key and the serialized parameters needed to derive it again are printed in hex.

USAGE: pwcrypt derive [FLAGS] < password.txt

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

	a, err := newApp(cfg, errOut)
	if err != nil {
		return err
	}
	var params *kdf.Parameters
	if paramsHex != "" {
		data, err := hex.DecodeString(paramsHex)
		if err != nil {
			return fmt.Errorf("failed to decode parameters: %w", err)
		}
		params = new(kdf.Parameters)
		if err := params.UnmarshalBinary(data); err != nil {
			return err
		}
	} else {
		engine, err := a.engine(kdfName)
		if err != nil {
			return err
		}
		params = engine.DefaultParameters()
		if err := engine.Randomize(params); err != nil {
			return err
		}
	}
	defer params.Wipe()

	password, err := readPassword(in)
	if err != nil {
		return err
	}
	defer xor.Wipe(password)
	key, err := a.kdfs.Transform(password, params)
	if err != nil {
		return err
	}
	defer xor.Wipe(key)
	encoded, err := params.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "key: %s\nparams: %s\n", hex.EncodeToString(key), hex.EncodeToString(encoded))
	return err
}
