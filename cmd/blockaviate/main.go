// Command blockaviate records and verifies data-store operations in a
// tamper-evident, proof-of-work stamped ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/blockaviate/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Ctrl-C cancels an in-flight proof search instead of killing mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Commands report ExitErrors themselves; anything else is a usage error
	// raised by cobra before a command ran.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
