// Package main provides the entry point for the aliasrewrite CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumatoshi-tech/aliasrewrite/cmd/aliasrewrite/commands"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		// check reports pending rewrites through the exit code alone.
		if !errors.Is(err, commands.ErrWouldChange) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}
