// Command guardrails manages guardrails stories and tasks.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/guardrails/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
