package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filesorter/internal/faults"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK                = 0
	exitFailure           = 1
	exitDirectoryNotFound = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cc := newCommandContext(os.Stdin)
	cmd := newRootCommand(cc)
	err := cmd.ExecuteContext(ctx)
	cc.close()
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, faults.ErrDirectoryNotFound):
		return exitDirectoryNotFound
	default:
		return exitFailure
	}
}
