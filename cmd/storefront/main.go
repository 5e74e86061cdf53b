// Command storefront serves the storefront and admin HTTP API.
//
//	@title						Storefront API
//	@version					1.0
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/MikeMC777/storefront-ecom/internal/category"
	"github.com/MikeMC777/storefront-ecom/internal/config"
	"github.com/MikeMC777/storefront-ecom/internal/dashboard"
	"github.com/MikeMC777/storefront-ecom/internal/db"
	"github.com/MikeMC777/storefront-ecom/internal/logs"
	"github.com/MikeMC777/storefront-ecom/internal/merchant"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
	"github.com/MikeMC777/storefront-ecom/internal/order"
	"github.com/MikeMC777/storefront-ecom/internal/product"
	"github.com/MikeMC777/storefront-ecom/internal/session"
	"github.com/MikeMC777/storefront-ecom/internal/user"
	"github.com/MikeMC777/storefront-ecom/internal/visitor"
	"github.com/MikeMC777/storefront-ecom/internal/wishlist"
)

func main() {
	setAdmin := flag.String("set-admin", "", "create or promote an admin account given as email:password, then exit")
	flag.Parse()

	if *setAdmin != "" {
		os.Exit(runSetAdmin(*setAdmin))
	}

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		injectInfra(),
		injectRepo(),
		injectService(),
		fx.Provide(newRouter),
		fx.Invoke(startServer),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.Load,
		newLogger,
		newPool,
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		newProducts,
		fx.Annotate(category.NewPGRepo, fx.As(new(category.Repository))),
		fx.Annotate(merchant.NewPGRepo, fx.As(new(merchant.Repository))),
		fx.Annotate(user.NewPGRepo, fx.As(new(user.Repository))),
		fx.Annotate(wishlist.NewPGRepo, fx.As(new(wishlist.Repository))),
		fx.Annotate(notification.NewPGRepo, fx.As(new(notification.Repository))),
		fx.Annotate(visitor.NewPGRecorder, fx.As(new(visitor.Recorder))),
		newOrders,
	)
}

func injectService() fx.Option {
	return fx.Provide(
		newIssuer,
		newExt,
		newAggregator,
	)
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

func newProducts(pool *pgxpool.Pool, cfg *config.Config) product.Repository {
	return product.NewCatalog(product.NewPGRepo(pool), cfg.CatalogCacheTTL)
}

func newOrders(pool *pgxpool.Pool, cfg *config.Config) order.Repository {
	return order.NewPGRepo(pool, cfg.DuplicateWindow)
}

func newIssuer(cfg *config.Config) *session.Issuer {
	return session.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
}

// newExt talks to a separate user-service when one is configured and serves
// the directory in-process otherwise.
func newExt(lc fx.Lifecycle, cfg *config.Config, users user.Repository, products product.Repository, log *slog.Logger) (*order.Ext, error) {
	if cfg.UserSvcAddr == "" {
		return &order.Ext{User: user.NewLocalDirectory(users), Products: products}, nil
	}
	ext, err := order.NewExt(cfg.UserSvcAddr, products)
	if err != nil {
		return nil, err
	}
	log.Info("[USERS] using remote directory", "addr", cfg.UserSvcAddr)
	lc.Append(fx.StopHook(ext.Close))
	return ext, nil
}

func newAggregator(pool *pgxpool.Pool, cfg *config.Config) (*dashboard.Aggregator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &dashboard.Aggregator{
		Source:          dashboard.NewPGSource(pool),
		CompletedStatus: cfg.CompletedStatus,
		Now:             time.Now,
		Location:        loc,
	}, nil
}

func startServer(lc fx.Lifecycle, sd fx.Shutdowner, cfg *config.Config, engine *gin.Engine, log *slog.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return err
			}
			log.Info("storefront listening", "addr", cfg.HTTPAddr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", "err", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
	})
}
