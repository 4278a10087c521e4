package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/localmarket-hq/localmarket-backend/api/controllers"
	ordercontrollers "github.com/localmarket-hq/localmarket-backend/api/controllers/orders"
	webhookcontrollers "github.com/localmarket-hq/localmarket-backend/api/controllers/webhooks"
	"github.com/localmarket-hq/localmarket-backend/api/middleware"
	checkoutsvc "github.com/localmarket-hq/localmarket-backend/internal/checkout"
	ordersvc "github.com/localmarket-hq/localmarket-backend/internal/orders"
	productsvc "github.com/localmarket-hq/localmarket-backend/internal/products"
	shippingsvc "github.com/localmarket-hq/localmarket-backend/internal/shipping"
	paymentswebhook "github.com/localmarket-hq/localmarket-backend/internal/webhooks/payments"
	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
	"github.com/localmarket-hq/localmarket-backend/pkg/redis"
	pkgstripe "github.com/localmarket-hq/localmarket-backend/pkg/stripe"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        controllers.Pinger
	RedisClient     *redis.Client
	CheckoutService checkoutsvc.Service
	ShippingService shippingsvc.Service
	ProductService  productsvc.Service
	OrdersService   ordersvc.Service
	StripeClient    *pkgstripe.Client
	WebhookService  *paymentswebhook.Service
	WebhookGuard    *paymentswebhook.IdempotencyGuard
}

// NewRouter assembles the chi router with the API's middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.RedisClient))
	})

	r.Post("/webhook", webhookcontrollers.PaymentsWebhook(
		deps.WebhookService, deps.StripeClient, deps.WebhookGuard, deps.Logger,
	))

	r.Route("/api", func(r chi.Router) {
		r.Post("/create-checkout-session", controllers.CreateCheckoutSession(deps.CheckoutService, deps.Logger))
		r.Post("/create-label", controllers.CreateLabel(deps.ShippingService, deps.OrdersService, deps.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.OrdersService, deps.Logger))
			r.Get("/{orderId}", ordercontrollers.Get(deps.OrdersService, deps.Logger))
			r.Post("/{orderId}/status", ordercontrollers.UpdateStatus(deps.OrdersService, deps.Logger))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.ProductService, deps.Logger))
			r.Post("/", controllers.CreateProduct(deps.ProductService, deps.Logger))
			r.Get("/{productId}", controllers.GetProduct(deps.ProductService, deps.Logger))
			r.Patch("/{productId}", controllers.UpdateProduct(deps.ProductService, deps.Logger))
			r.Delete("/{productId}", controllers.DeleteProduct(deps.ProductService, deps.Logger))
		})
	})

	return r
}
