package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/societyhub/internal/buildinfo"
	"github.com/dmitrijs2005/societyhub/internal/client/config"
	"github.com/dmitrijs2005/societyhub/internal/devserver"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	srv, err := devserver.New(devserver.Options{
		Secret:        []byte(cfg.DevServerSecret),
		AdminUsername: "admin",
		AdminPassword: "admin123",
		SeedData:      true,
	}, log)
	if err != nil {
		return err
	}

	log.Info(ctx, "seeded administrator", "username", "admin")
	if err := srv.Run(ctx, cfg.DevServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
