package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andywolf/skillkit/internal/cli"
)

func main() {
	// Setup context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
