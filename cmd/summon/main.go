package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{}
	err := c.rootCommand().ExecuteContext(ctx)
	c.close()
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
	os.Exit(c.exitCode)
}
