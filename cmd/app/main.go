package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"souk-inventory/internal/adapters/cli"
	"souk-inventory/internal/adapters/repl"
	"souk-inventory/internal/app"
	"souk-inventory/internal/config"
	"souk-inventory/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Keep stdout for command output; only warnings and above go to the console.
	log, err := logger.InitLogger(logger.LogConfig{
		Level:       "warn",
		Environment: cfg.AppEnv,
		ServiceName: config.ServiceName + "-cli",
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	rt, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap", zap.Error(err))
	}
	defer rt.Close()

	// Without arguments, start the interactive shell.
	if len(os.Args) < 2 {
		if err := repl.Run(ctx, rt.Service, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			rt.Close()
			os.Exit(1)
		}
		return
	}

	if err := cli.Run(ctx, rt.Service, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		rt.Close()
		os.Exit(1)
	}
}
