package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/app"
	"github.com/rosvybory/observadores/internal/config"
	internalhttp "github.com/rosvybory/observadores/internal/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := internalhttp.NewRouter(cfg, internalhttp.Dependencies{
		JWT:     a.JWT,
		Auth:    a.Auth,
		Users:   a.Users,
		Regions: a.Regions,
		Scopes:  a.RBAC,
		Checks: map[string]func(context.Context) error{
			"db":    a.Pool.Ping,
			"redis": func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() },
		},
		Metrics: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
