// Command ls-planets reports where the Sun, Moon and planets are in an
// observer's sky.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/litescript/ls-planets/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
