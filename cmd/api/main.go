package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/localmarket-hq/localmarket-backend/api/routes"
	checkoutsvc "github.com/localmarket-hq/localmarket-backend/internal/checkout"
	"github.com/localmarket-hq/localmarket-backend/internal/notifications"
	"github.com/localmarket-hq/localmarket-backend/internal/orders"
	"github.com/localmarket-hq/localmarket-backend/internal/products"
	"github.com/localmarket-hq/localmarket-backend/internal/profiles"
	shippingsvc "github.com/localmarket-hq/localmarket-backend/internal/shipping"
	paymentswebhook "github.com/localmarket-hq/localmarket-backend/internal/webhooks/payments"
	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	"github.com/localmarket-hq/localmarket-backend/pkg/db"
	"github.com/localmarket-hq/localmarket-backend/pkg/email"
	"github.com/localmarket-hq/localmarket-backend/pkg/env"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
	"github.com/localmarket-hq/localmarket-backend/pkg/migrate"
	"github.com/localmarket-hq/localmarket-backend/pkg/redis"
	"github.com/localmarket-hq/localmarket-backend/pkg/shipping"
	pkgstripe "github.com/localmarket-hq/localmarket-backend/pkg/stripe"
)

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	shippingClient, err := shipping.NewClient(cfg.Shipping.APIToken, shipping.WithBaseURL(cfg.Shipping.BaseURL))
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping client", err)
		os.Exit(1)
	}

	emailClient, err := email.NewClient(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(emailClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	profilesRepo := profiles.NewRepository(dbClient.DB())

	productService, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		checkoutsvc.NewPaymentSessionClient(stripeClient), cfg.Checkout, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	shippingService, err := shippingsvc.NewService(shippingClient, ordersRepo, profilesRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	webhookService, err := paymentswebhook.NewService(paymentswebhook.ServiceParams{
		OrdersRepo:        ordersRepo,
		ProductsRepo:      productsRepo,
		TransactionRunner: dbClient,
		Notifier:          notificationService,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentswebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "payments")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			RedisClient:     redisClient,
			CheckoutService: checkoutService,
			ShippingService: shippingService,
			ProductService:  productService,
			OrdersService:   ordersService,
			StripeClient:    stripeClient,
			WebhookService:  webhookService,
			WebhookGuard:    webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
