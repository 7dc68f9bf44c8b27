// ottobrew is a pour-over brewing companion.
//
// Usage:
//
//	ottobrew [--config file] [--verbose|--quiet] [--db path] <command>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottobrew/internal/cli"
)

func main() {
	// OTTOBREW_* settings may live in a .env file next to the binary.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
