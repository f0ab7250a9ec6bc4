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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/canteen-admin/internal/api/rest"
	"github.com/CameronXie/canteen-admin/internal/api/rest/handlers"
	"github.com/CameronXie/canteen-admin/internal/api/rest/middlewares"
	"github.com/CameronXie/canteen-admin/internal/authn"
	"github.com/CameronXie/canteen-admin/internal/catalog"
	"github.com/CameronXie/canteen-admin/internal/feed"
	"github.com/CameronXie/canteen-admin/internal/keyfetcher"
	"github.com/CameronXie/canteen-admin/internal/orders"
	"github.com/CameronXie/canteen-admin/internal/repository/postgres"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 30 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the change feed listener",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.PostgresURL())
	if err != nil {
		return err
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	e, err := newEnforcer(cfg, userRepo, logger)
	if err != nil {
		return fmt.Errorf("init enforcer: %w", err)
	}

	hub := feed.NewHub(feed.DefaultBuffer, logger)
	defer hub.Close()

	orderService := orders.NewService(orderRepo, logger)
	catalogService := catalog.NewService(itemRepo, categoryRepo, logger)

	mux := rest.NewMuxWithHandlers(&rest.RouterConfig{
		SignInHandler: handlers.NewSignInHandler(
			authn.NewPasswordAuthenticator(userRepo),
			privateKeyFetcher(),
			handlers.TokenConfig{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience, TTL: cfg.TokenTTL},
			logger,
		),
		MeHandler:        handlers.NewMeHandler(userRepo, logger),
		FeedHandler:      handlers.NewFeedHandler(hub, cfg.FeedAllowedOrigins, logger),
		OrderHandler:     handlers.NewOrderHandler(orderService, loc, logger),
		DashboardHandler: handlers.NewDashboardHandler(orderService, loc, logger),
		ProductHandler:   handlers.NewProductHandler(catalogService, logger),
		CategoryHandler:  handlers.NewCategoryHandler(catalogService, logger),
		PaymentHandler:   handlers.NewPaymentHandler(paymentRepo, orderService, userRepo, loc, logger),
		AuthorisationMiddleware: middlewares.NewJWTAuthorizationMiddleware(
			e,
			publicKeyFetcher(),
			middlewares.TokenConfig{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience},
			logger,
		),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middlewares.Chain(mux, middlewares.NewRequestLogger(logger)),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api_listening", "addr", server.Addr, "authz_engine", cfg.AuthzEngine)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return feed.NewListener(pool, postgres.ChangeChannel, hub, logger).Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("api_shutting_down")

		// feed clients hold hijacked connections that Shutdown does not wait for
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func privateKeyFetcher() keyfetcher.PrivateKeyFetcher {
	if cfg.PrivateKeyFile != "" {
		return keyfetcher.FromFile(cfg.PrivateKeyFile)
	}
	return keyfetcher.FromBase64(cfg.PrivateKeyBase64)
}

func publicKeyFetcher() keyfetcher.PublicKeyFetcher {
	if cfg.PublicKeyFile != "" {
		return keyfetcher.FromFile(cfg.PublicKeyFile)
	}
	return keyfetcher.FromBase64(cfg.PublicKeyBase64)
}
