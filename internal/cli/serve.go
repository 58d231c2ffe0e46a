package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	grpcapi "ai-speech-confidence-service/internal/api/grpc"
	"ai-speech-confidence-service/internal/app"
	httpapi "ai-speech-confidence-service/internal/http"
	"ai-speech-confidence-service/internal/observability"
	"ai-speech-confidence-service/internal/observability/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, gRPC and Kafka scoring service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Observability.TracingEnabled,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: Version,
		Endpoint:       cfg.Observability.OTLPEndpoint,
		Insecure:       cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Shutdown()
	if err := application.Start(); err != nil {
		return err
	}

	grpcServer, healthServer := grpcapi.NewServer(application.Analyzer, application.Metrics)
	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
	}
	obsServer := observability.NewServer(":"+cfg.Service.MetricsPort, application.Ready)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return application.Hub.Run(gctx) })
	g.Go(func() error { return application.Consumer.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", lis.Addr().String()).Msg("gRPC server started")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(obsServer.ListenAndServe)

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down servers")
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := errors.Join(
			httpServer.Shutdown(shutdownCtx),
			obsServer.Shutdown(shutdownCtx),
		)
		grpcServer.GracefulStop()
		return err
	})

	return g.Wait()
}
