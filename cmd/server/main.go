package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puzzle-rewards/internal/infrastructure/app"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	smoke := flag.Bool("smoke", false, "run the repository smoke test against Postgres and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Init(ctx)
	if err != nil {
		fmt.Printf("app init error: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if *smoke {
		if application.DB == nil {
			application.Log.Error("smoke test needs STORE_DRIVER=postgres")
			return
		}
		if err := runRepoSmokeTest(ctx, application.Log, application.DB); err != nil {
			application.Log.Error("smoke test failed", zap.Error(err))
		}
		return
	}

	go func() {
		application.Log.Info("grpc server started", zap.String("addr", application.Listener.Addr().String()))
		if err := application.GRPCServer.Serve(application.Listener); err != nil {
			application.Log.Error("grpc server stopped", zap.Error(err))
		}
	}()

	go func() {
		application.Log.Info("ops server started", zap.String("addr", application.OpsServer.Addr))
		if err := application.OpsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Log.Error("ops server stopped", zap.Error(err))
		}
	}()

	application.Log.Info("server is starting", zap.String("env", application.Config.Logger.Env))

	<-ctx.Done()
	application.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.OpsServer.Shutdown(shutdownCtx); err != nil {
		application.Log.Warn("ops server shutdown", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		application.GRPCServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		application.GRPCServer.Stop()
	}
	application.Log.Info("server stopped")
}
