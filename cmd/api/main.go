package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecom-backend/api/routes"
	"github.com/angelmondragon/ecom-backend/internal/analytics"
	"github.com/angelmondragon/ecom-backend/internal/auth"
	"github.com/angelmondragon/ecom-backend/internal/cart"
	"github.com/angelmondragon/ecom-backend/internal/coupons"
	"github.com/angelmondragon/ecom-backend/internal/faq"
	"github.com/angelmondragon/ecom-backend/internal/orders"
	product "github.com/angelmondragon/ecom-backend/internal/products"
	"github.com/angelmondragon/ecom-backend/internal/reviews"
	"github.com/angelmondragon/ecom-backend/internal/users"
	"github.com/angelmondragon/ecom-backend/internal/wishlist"
	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/metrics"
	"github.com/angelmondragon/ecom-backend/pkg/migrate"
	"github.com/angelmondragon/ecom-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Env:         cfg.App.Env,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; rate limiting, idempotency and analytics caching disabled")
	}

	verifier, err := pkgAuth.NewVerifier(ctx, cfg.JWT, cfg.Identity)
	if err != nil {
		logg.Error(ctx, "failed to build token verifier", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg)
	commerceMetrics := metrics.NewCommerceMetrics(reg)

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)

	usersService, err := users.NewService(users.ServiceParams{
		Tx:        dbClient,
		Repo:      usersRepo,
		AdminRole: cfg.Identity.AdminRole,
		Logger:    logg,
	})
	exitOnErr(logg, err, "failed to create user service")

	authService, err := auth.NewService(auth.ServiceParams{
		Tx:             dbClient,
		UserRepo:       usersRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		AdminRole:      cfg.Identity.AdminRole,
		Logger:         logg,
	})
	exitOnErr(logg, err, "failed to create auth service")

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cart.NewRepository(conn),
		Tx:      dbClient,
		Metrics: commerceMetrics,
		Logger:  logg,
	})
	exitOnErr(logg, err, "failed to create cart service")

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(conn),
		Logger: logg,
	})
	exitOnErr(logg, err, "failed to create orders service")

	catalogService, err := product.NewService(product.NewRepository(conn))
	exitOnErr(logg, err, "failed to create catalog service")

	wishlistService, err := wishlist.NewService(wishlist.NewRepository(conn))
	exitOnErr(logg, err, "failed to create wishlist service")

	couponService, err := coupons.NewService(coupons.NewRepository(conn), nil)
	exitOnErr(logg, err, "failed to create coupon service")

	faqService, err := faq.NewService(faq.NewRepository(conn))
	exitOnErr(logg, err, "failed to create faq service")

	reviewService, err := reviews.NewService(reviews.NewRepository(conn))
	exitOnErr(logg, err, "failed to create review service")

	analyticsParams := analytics.ServiceParams{
		Repo:     analytics.NewRepository(conn),
		CacheTTL: cfg.Analytics.CacheTTL,
		Logger:   logg,
	}
	if redisClient != nil {
		analyticsParams.Cache = redisClient
	}
	analyticsService, err := analytics.NewService(analyticsParams)
	exitOnErr(logg, err, "failed to create analytics service")

	if err := authService.BootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		logg.Error(ctx, "admin bootstrap failed", err)
	}

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Verifier:    verifier,
		Gatherer:    reg,
		HTTPMetrics: httpMetrics,
		Auth:        authService,
		Users:       usersService,
		Cart:        cartService,
		Orders:      ordersService,
		Catalog:     catalogService,
		Wishlist:    wishlistService,
		Coupons:     couponService,
		FAQ:         faqService,
		Reviews:     reviewService,
		Analytics:   analyticsService,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	if closeErr != nil {
		logg.Error(logCtx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(logCtx, "api server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func exitOnErr(logg *logger.Logger, err error, msg string) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
