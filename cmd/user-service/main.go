// Command user-service serves the user directory over gRPC for storefront
// instances configured with USER_SERVICE_ADDR.
package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/storefront-ecom/internal/config"
	"github.com/MikeMC777/storefront-ecom/internal/db"
	"github.com/MikeMC777/storefront-ecom/internal/logs"
	"github.com/MikeMC777/storefront-ecom/internal/user"
	pb "github.com/MikeMC777/storefront-ecom/internal/userpb"
)

func main() {
	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		fx.Provide(
			config.Load,
			newLogger,
			newPool,
			fx.Annotate(user.NewPGRepo, fx.As(new(user.Repository))),
			user.NewService,
			newGRPCServer,
		),
		fx.Invoke(startServer),
	).Run()
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	log, err := logs.New(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

func newPool(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("[DB] connected")
	lc.Append(fx.StopHook(pool.Close))
	return pool, nil
}

func newGRPCServer(svc *user.Service) *grpc.Server {
	srv := grpc.NewServer()
	pb.RegisterUserDirectoryServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

func startServer(lc fx.Lifecycle, sd fx.Shutdowner, cfg *config.Config, srv *grpc.Server, log *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.UserSvcListen)
			if err != nil {
				return err
			}
			log.Info("user-service listening", "addr", cfg.UserSvcListen)
			go func() {
				if err := srv.Serve(ln); err != nil {
					log.Error("grpc server stopped", "err", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down grpc server")
			done := make(chan struct{})
			go func() {
				srv.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
				srv.Stop()
			}
			return nil
		},
	})
}
