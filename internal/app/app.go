package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/dal/postgres"
	"github.com/corray333/backend-labs/orderitems/internal/dal/uow"
	"github.com/corray333/backend-labs/orderitems/internal/otel"
	"github.com/corray333/backend-labs/orderitems/internal/service/services/orderitemsvc"
	grpctransport "github.com/corray333/backend-labs/orderitems/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/orderitems/internal/transport/http"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// App represents the application.
type App struct {
	orderItemSvc   *orderitemsvc.OrderItemService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()

	unitOfWork := uow.NewUnitOfWork(
		postgresClient.Pool(),
		uow.WithLockTimeout(viper.GetDuration("postgres.lock_timeout")),
	)

	orderItemSvc := orderitemsvc.MustNewOrderItemService(
		orderitemsvc.WithUnitOfWork(unitOfWork),
	)

	httpTransport := httptransport.NewHTTPTransport(orderItemSvc, postgresClient)
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport(orderItemSvc)
	grpcTransport.RegisterServices()

	return &App{
		orderItemSvc:   orderItemSvc,
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		if err := a.grpcTransport.Run(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")
		a.gracefulShutdown()

		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("server.shutdown_timeout"))
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed")

	// Spans of the last requests are flushed after the servers stop.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelController.Shutdown(otelCtx); err != nil {
		slog.Error("Telemetry shutdown error", "error", err)
	}
}
