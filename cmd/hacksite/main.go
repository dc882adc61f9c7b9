package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-hacksite"
	"github.com/goliatone/go-hacksite/internal/config"
	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/internal/server"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/render"
	"github.com/goliatone/go-hacksite/pkg/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var (
		addrFlag      = flag.String("addr", cfg.Addr, "HTTP listen address")
		contentFlag   = flag.String("content", cfg.ContentFile, "Site content YAML file (embedded content if empty)")
		variantFlag   = flag.String("variant", cfg.ThemeVariant, "Theme variant")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "Shutdown grace period")
	)
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	content, err := loadContent(*contentFlag)
	if err != nil {
		logger.Error("load content", "error", err)
		os.Exit(1)
	}
	themeConfig, err := content.Theme.RendererConfig(*variantFlag)
	if err != nil {
		logger.Error("resolve theme", "error", err)
		os.Exit(1)
	}
	pages, err := render.NewPages(content, render.WithTheme(themeConfig))
	if err != nil {
		logger.Error("build pages", "error", err)
		os.Exit(1)
	}

	targets, err := hacksite.NewTargets(ctx, cfg.RegisterEndpoint, cfg.ContactEndpoint, cfg.ValidateContract,
		endpoint.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		logger.Error("build endpoints", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(pages, targets.Register, targets.Contact,
		server.WithLogger(logger),
		server.WithStatic(hacksite.StaticFS()),
		server.WithRedirect(cfg.RedirectTo, cfg.RedirectDelay),
	)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening",
		"addr", *addrFlag,
		"register_endpoint", targets.Register.URL(),
		"contact_endpoint", targets.Contact.URL(),
		"variant", themeConfig.Variant,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		logger.Error("listen", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
}

func loadContent(path string) (*site.Content, error) {
	if path == "" {
		return site.Default()
	}
	return site.LoadFile(path)
}
