package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnqtcg/shipmetrics/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runner := cli.NewApp(cli.AppDeps{})
	code := runWithRunner(ctx, os.Args[1:], runner)
	stop()
	os.Exit(code)
}

func runWithRunner(ctx context.Context, args []string, runner cli.Runner) int {
	return runner.Run(ctx, args)
}
