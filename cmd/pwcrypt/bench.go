package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/saylorsolutions/pwcore/cmd/internal"
	"github.com/saylorsolutions/pwcore/pkg/kdf"
	"github.com/saylorsolutions/pwcore/pkg/xor"
)

func runBench(ctx context.Context, cfg config, args []string, out io.Writer) error {
	var (
		helpFlag    bool
		metricsFlag bool
		kdfName     string
		budget      time.Duration
	)
	flags := newFlagSet("bench", &helpFlag, &cfg)
	flags.StringVarP(&kdfName, "kdf", "k", cfg.KDF, "KDF to calibrate: aes, argon2d, argon2id, or scrypt.")
	flags.DurationVarP(&budget, "time", "t", cfg.BenchTime, "Time a single key derivation should take.")
	flags.BoolVarP(&metricsFlag, "metrics", "m", false, "Print collected metrics after calibrating.")
	flags.Usage = func() {
		fmt.Printf(`
Finds the strongest parameters for a KDF that derive a key within the given time on this machine.
Calibration can be interrupted, and the best parameters found so far will be printed.

USAGE: pwcrypt bench [FLAGS]

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
	engine, err := a.engine(kdfName)
	if err != nil {
		return err
	}
	internal.Echo("Calibrating %s for %s", engine.Name(), budget)
	start := time.Now()
	params, err := engine.BestParameters(ctx, budget)
	if err != nil {
		return err
	}
	a.logger.Debug("Calibration complete", "engine", engine.Name(), "elapsed", time.Since(start))

	msg := a.random.Bytes(kdf.KeySize)
	defer xor.Wipe(msg)
	verifyStart := time.Now()
	key, err := engine.Transform(msg, params)
	if err != nil {
		return fmt.Errorf("failed to verify parameters: %w", err)
	}
	xor.Wipe(key)
	internal.Echo("One derivation with these parameters took %s", time.Since(verifyStart))
	if err := writeParams(out, params); err != nil {
		return err
	}
	if metricsFlag {
		return a.writeMetrics(out)
	}
	return nil
}

// writeParams prints each parameter on its own line, with byte values in hex.
func writeParams(w io.Writer, p *kdf.Parameters) error {
	if _, err := fmt.Fprintf(w, "UUID: %s\n", p.UUID()); err != nil {
		return err
	}
	for _, key := range p.Keys() {
		var v any
		switch p.TypeOf(key) {
		case kdf.TypeUint32:
			v, _ = p.Uint32(key)
		case kdf.TypeUint64:
			v, _ = p.Uint64(key)
		case kdf.TypeInt32:
			v, _ = p.Int32(key)
		case kdf.TypeInt64:
			v, _ = p.Int64(key)
		case kdf.TypeBool:
			v, _ = p.Bool(key)
		case kdf.TypeString:
			v, _ = p.StringValue(key)
		case kdf.TypeBytes:
			b, _ := p.Bytes(key)
			v = hex.EncodeToString(b)
		}
		if _, err := fmt.Fprintf(w, "%s (%s): %v\n", key, p.TypeOf(key), v); err != nil {
			return err
		}
	}
	return nil
}
