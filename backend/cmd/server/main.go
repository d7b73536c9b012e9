package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"weekend-at-joes/backend/internal/app"
	"weekend-at-joes/backend/internal/bootstrap"
	"weekend-at-joes/backend/internal/infra/logger"
)

func main() {
	zapLogger, err := logger.Init()
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resources, err := app.InitResources(ctx)
	if err != nil {
		sugar.Fatalw("initialise resources failed", "error", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			sugar.Warnw("resource cleanup error", "error", err)
		}
	}()

	application, err := bootstrap.BuildApplication(ctx, sugar, resources)
	if err != nil {
		sugar.Fatalw("build application failed", "error", err)
	}
	defer application.Close()

	httpCfg := resources.Config.Server.HTTP
	srv := &http.Server{
		Addr:              httpCfg.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: httpCfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr, "mode", resources.Config.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		sugar.Infow("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			sugar.Errorw("http server stopped", "error", err)
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("graceful shutdown failed", "error", err)
	}
}
