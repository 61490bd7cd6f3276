package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/florianilch/llmwire/cmd/llmwire/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// Cancelling the context closes the open stream.
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,    // SIGINT: Ctrl+C (cross-platform)
		syscall.SIGTERM, // SIGTERM: container termination (Unix-only)
	)
	defer stop()

	if err := commands.Execute(ctx, os.Args, version, commit); err != nil {
		slog.ErrorContext(ctx, "llmwire failed", "error", err)
		os.Exit(1)
	}
}
