package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/caarlos0/env/v11"
	"github.com/saylorsolutions/pwcore/cmd/internal"
	flag "github.com/spf13/pflag"
)

var version = "dev"

// errOut receives debug logs when verbose output is enabled.
var errOut io.Writer = os.Stderr

func usage() {
	fmt.Printf(`
pwcrypt generates passwords and derives keys from them.

USAGE: pwcrypt COMMAND [FLAGS]

COMMANDS:
    gen       Generate passwords from a character set, pattern, or custom algorithm.
    bench     Calibrate KDF parameters to a time budget on this machine.
    derive    Derive a key from a password read from stdin.
    lock      Encrypt a file with a passphrase read from stdin.
    unlock    Decrypt a file locked with 'pwcrypt lock'.
    version   Print the version of pwcrypt.

Run 'pwcrypt COMMAND --help' to see the flags for each command.

ENVIRONMENT:
    PWCRYPT_BENCH_TIME  Default for 'bench --time', 1s if not set.
    PWCRYPT_KDF         Default KDF for 'bench', 'derive', and 'lock', argon2id if not set.
    PWCRYPT_LENGTH      Default for 'gen --length', 20 if not set.
    PWCRYPT_VERBOSE     Set to true to always log debug information to stderr.
`)
}

// newFlagSet creates a FlagSet with the flags every command shares.
func newFlagSet(name string, help *bool, cfg *config) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.BoolVarP(help, "help", "h", false, "Prints this usage information.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log debug information to stderr.")
	return flags
}

func main() {
	cfg, err := parseConfig(env.ToMap(os.Environ()))
	internal.FatalIf(err, "Failed to load configuration")
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "gen":
		err = runGen(cfg, args, os.Stdout)
	case "bench":
		err = runBench(ctx, cfg, args, os.Stdout)
	case "derive":
		err = runDerive(cfg, args, os.Stdin, os.Stdout)
	case "lock":
		err = runLock(cfg, args, os.Stdin, false)
	case "unlock":
		err = runLock(cfg, args, os.Stdin, true)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage()
	default:
		stop()
		usage()
		internal.Fatal("Unknown command '%s'", cmd)
	}
	stop()
	internal.FatalIf(err, "Failed to run %s", cmd)
}
