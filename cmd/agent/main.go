package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vision-agent/internal/adapter/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRoot(cli.DefaultApp()).ExecuteContext(ctx)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	if errors.Is(err, cli.ErrGoalNotAchieved) {
		os.Exit(2)
	}
	os.Exit(1)
}
