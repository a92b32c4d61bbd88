// Command storefront serves the souvenir shop's cart engine over gRPC and
// a JSON HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/config"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/session"
)

const Domain = "cart"

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("storefront stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	store, err := session.NewStore(cfg.MaxSessions)
	if err != nil {
		return err
	}
	manager := session.NewManager(cat, store, logger, session.WithHistoryLimit(cfg.HistoryLimit))
	srv := newServer(manager, logger)

	logger.Info("storefront starting",
		zap.String("env", cfg.AppEnv),
		zap.String("domain", srv.router.Domain()),
		zap.Strings("commands", srv.router.Types()),
		zap.Int("products", cat.Len()),
		zap.Int("max_sessions", cfg.MaxSessions),
		zap.Int("history_limit", cfg.HistoryLimit),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return evented.RunServer(ctx, evented.ServerConfig{Domain: Domain, Port: cfg.GRPCPort}, logger, func(s *grpc.Server) {
			RegisterCartServer(s, srv)
		})
	})

	if cfg.HTTPPort > 0 {
		httpServer := newHTTPServer(fmt.Sprintf(":%d", cfg.HTTPPort), srv)
		g.Go(func() error {
			logger.Info("http server started", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("http server stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
