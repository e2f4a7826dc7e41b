package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pkt.systems/unitsctl/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdin, os.Stdout, os.Stderr).rootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unitsctl: %v\n", err)
		os.Exit(1)
	}
}
