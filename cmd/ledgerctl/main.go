// ledgerctl inspects and maintains the ledger snapshot outside the server:
// listing accounts, running a recurring sweep by hand, previewing due dates
// and wiping the stored ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, out io.Writer) error
}

var commands = []command{
	{name: "accounts", summary: "list accounts and flag low balances", run: runAccounts},
	{name: "sweep", summary: "execute due recurring plans now", run: runSweep},
	{name: "next-due", summary: "print the next due date of a schedule", run: runNextDue},
	{name: "reset", summary: "delete the stored ledger", run: runReset},
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage(out)
		return nil
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], out)
		}
	}

	return fmt.Errorf("unknown command %q, run ledgerctl --help", args[0])
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: ledgerctl <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")

	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "storage and ledger settings are read from the environment (.env is honoured)")
}

// parseFlags parses args, printing usage on --help. It reports done when
// the command should return without doing anything.
func parseFlags(fs *pflag.FlagSet, args []string, out io.Writer) (done bool, err error) {
	fs.SetOutput(out)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}

		return false, err
	}

	if fs.NArg() > 0 {
		return false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return false, nil
}
