package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goFieldOps/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx, cli.LoadConfig(), os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		cli.PrintUsage(os.Stderr)
		return 2
	default:
		fmt.Fprintln(os.Stderr, "fieldops:", err)
		return 1
	}
}
