package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/saylorsolutions/pwcore/pkg/passlock"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

type lockFiles struct {
	in  string
	out string
}

func (f lockFiles) validate() error {
	if f.in == "" || f.out == "" {
		return errors.New("both --in and --out are required")
	}
	if f.in == f.out {
		return errors.New("--in and --out must be different files")
	}
	return nil
}

// runLock encrypts (or decrypts, when unlock is true) a file with a passphrase read from stdin.
func runLock(cfg config, args []string, in io.Reader, unlock bool) error {
	var (
		helpFlag bool
		kdfName  string
		files    lockFiles
	)
	name, action := "lock", "Encrypts"
	if unlock {
		name, action = "unlock", "Decrypts"
	}
	flags := newFlagSet(name, &helpFlag, &cfg)
	flags.StringVarP(&files.in, "in", "i", "", "File to read.")
	flags.StringVarP(&files.out, "out", "o", "", "File to write.")
	if !unlock {
		flags.StringVarP(&kdfName, "kdf", "k", cfg.KDF, "KDF used to derive the key: aes, argon2d, argon2id, or scrypt.")
	}
	flags.Usage = func() {
		fmt.Printf(`
%s a file with a key derived from a passphrase, read from the first line of stdin.

USAGE: pwcrypt %s --in FILE --out FILE < passphrase.txt

FLAGS:
%s
`, action, name, flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if helpFlag {
		flags.Usage()
		return nil
	}
	if err := files.validate(); err != nil {
		return err
	}

	a, err := newApp(cfg, errOut)
	if err != nil {
		return err
	}
	var opts []passlock.LockerOpt
	if !unlock {
		engine, err := a.engine(kdfName)
		if err != nil {
			return err
		}
		opts = append(opts, passlock.WithEngine(engine.Name()), passlock.WithRandom(a.random))
	}
	locker, err := passlock.NewLocker(a.kdfs, opts...)
	if err != nil {
		return err
	}

	pass, err := readPassword(in)
	if err != nil {
		return err
	}
	defer xor.Wipe(pass)
	data, err := os.ReadFile(files.in)
	if err != nil {
		return err
	}
	var result []byte
	if unlock {
		result, err = locker.Unlock(pass, data)
		xor.Wipe(data)
	} else {
		result, err = locker.Lock(pass, data)
	}
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", name, files.in, err)
	}
	if unlock {
		defer xor.Wipe(result)
	}
	return os.WriteFile(files.out, result, 0600)
}
