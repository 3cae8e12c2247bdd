package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/civicbook/config"
	"github.com/Domenick1991/civicbook/internal/bootstrap"
	"github.com/joho/godotenv"
)

const usage = `usage: app <command> [flags]

commands:
  check                                   validate configuration and dependencies
  availability -resource ID -date D -slot S
  schedule     -resource ID -date D
  quote        -file input.json
  submit       -file input.json
  advance      -category C -id UUID
  cancel       -category C -id UUID
  list         -category C
  find         -ref CODE
`

func main() {
	// A missing .env is fine; the process environment wins anyway.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := bootstrap.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build application", "error", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("Shutdown incomplete", "error", err)
		}
	}()

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err := cmd(ctx, app, os.Args[2:]); err != nil {
		log.Error("Command failed", "command", os.Args[1], "error", err)
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}
