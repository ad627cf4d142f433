package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	appcfg "github.com/park285/cheese-match/internal/config"
	"github.com/park285/cheese-match/internal/chessbuilder"
	"github.com/park285/cheese-match/internal/obslog"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := chessbuilder.New(ctx, cfg)
	if err != nil {
		log.Fatalf("match service init error: %v", err)
	}
	defer func() { _ = deps.Close() }()

	hubErr := make(chan error, 1)
	go func() { hubErr <- deps.Hub.Run(ctx) }()

	api := &fasthttp.Server{
		Handler:      deps.API.Handler,
		Name:         "cheese-match",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	ws := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           deps.Hub,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- api.ListenAndServe(cfg.HTTPAddr) }()
	go func() {
		if err := ws.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	obslog.L().Info("server_started", zap.String("http_addr", cfg.HTTPAddr), zap.String("ws_addr", cfg.WSAddr))

	select {
	case <-ctx.Done():
		obslog.L().Info("server_stopping")
	case err := <-errCh:
		obslog.L().Error("listener_failed", zap.Error(err))
	case err := <-hubErr:
		obslog.L().Error("ws_hub_stopped", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.ShutdownWithContext(shutdownCtx); err != nil {
		obslog.L().Warn("http_shutdown_error", zap.Error(err))
	}
	if err := ws.Shutdown(shutdownCtx); err != nil {
		obslog.L().Warn("ws_shutdown_error", zap.Error(err))
	}
}
