package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/buildinfo"
	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/cli"
	"github.com/dmitrijs2005/societyhub/internal/client/client"
	"github.com/dmitrijs2005/societyhub/internal/client/config"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/client/services"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/client/settings"
	"github.com/dmitrijs2005/societyhub/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	repo, closeRepo, err := kv.Open(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error(ctx, "error closing storage", "err", err)
		}
	}()

	if removed := kv.RemoveUnknown(ctx, repo, log, nil); len(removed) > 0 {
		log.Info(ctx, "removed unknown storage keys", "keys", removed)
	}

	reg := prometheus.NewRegistry()
	metrics := client.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, cfg.MetricsAddr, reg, log)
		defer stopMetrics()
	}

	// The facade reads tokens from the session cache, and the cache logs in
	// through the auth API that sits on the facade.
	sess := session.New(repo, log)
	hc, err := client.New(cfg.APIBaseURL, sess, log,
		client.WithMetrics(metrics),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	if err != nil {
		return err
	}
	authAPI := api.NewAuthAPI(hc)
	sess.SetAuthenticator(authAPI)

	store := settings.Open(ctx, repo, log)

	app := cli.NewApp(cli.Deps{
		Auth:           services.NewAuthService(sess, authAPI, log),
		Pages:          services.NewPageService(api.NewResources(hc), store),
		Settings:       store,
		Session:        sess,
		Storage:        repo,
		Log:            log,
		SearchDebounce: cfg.SearchDebounce,
		In:             in,
		Out:            out,
	})
	app.Run(ctx)
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server error", "err", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
