package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-hacksite"
	"github.com/goliatone/go-hacksite/internal/config"
	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/prompt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	endpointFlag := flag.String("endpoint", cfg.RegisterEndpoint, "Registration endpoint URL")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	targets, err := hacksite.NewTargets(ctx, *endpointFlag, cfg.ContactEndpoint, cfg.ValidateContract,
		endpoint.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		logger.Error("build endpoints", "error", err)
		os.Exit(1)
	}

	form := hacksite.NewRegistrationForm(cfg.RedirectTo, cfg.RedirectDelay)
	status, err := prompt.RunRegistration(ctx, prompt.NewSurveyDriver(os.Stdout), form, targets.Register)
	switch {
	case err == nil:
		fmt.Printf("Registered (%s)\n", status.Phase)
	case errors.Is(err, prompt.ErrAborted):
		fmt.Println("Registration cancelled.")
		os.Exit(130)
	default:
		logger.Debug("registration not completed", "phase", status.Phase.String(), "error", err)
		os.Exit(1)
	}
}
