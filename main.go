package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal"
	"github.com/syrilster/leave-api-e2e/internal/config"
)

func main() {
	// load values from .env into the system
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	cfg, err := config.NewApplicationConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.WithError(err).Error("invalid arguments")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := internal.Run(ctx, cfg, os.Stdout)
	stop()
	os.Exit(code)
}
