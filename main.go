// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hogflix/hogsim/cmd"
)

// main is the entry point for the hogsim CLI. The command tree receives a
// signal-aware context so an interrupt cancels in-flight sessions, which tear
// down their browsers without attempting the analytics flush wait.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
