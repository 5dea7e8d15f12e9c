package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ecom-backend/api/controllers"
	analyticscontrollers "github.com/angelmondragon/ecom-backend/api/controllers/analytics"
	cartcontrollers "github.com/angelmondragon/ecom-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/ecom-backend/api/controllers/orders"
	"github.com/angelmondragon/ecom-backend/api/middleware"
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
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/metrics"
	"github.com/angelmondragon/ecom-backend/pkg/redis"
)

// Dependencies collects everything the HTTP surface is built from. Redis is
// optional; without it rate limiting and idempotency are disabled.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Verifier middleware.TokenVerifier

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth      auth.Service
	Users     users.Service
	Cart      cart.Service
	Orders    orders.Service
	Catalog   product.Service
	Wishlist  wishlist.Service
	Coupons   coupons.Service
	FAQ       faq.Service
	Reviews   reviews.Service
	Analytics analytics.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var (
		rateStore        middleware.RateLimiter
		idempotencyStore redis.IdempotencyStore
	)
	readiness := map[string]controllers.Pinger{"db": deps.DB}
	if deps.Redis != nil {
		rateStore = deps.Redis
		idempotencyStore = deps.Redis
		readiness["redis"] = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignUpWindow,
		cfg.AuthRateLimit.SignUpIPLimit,
		cfg.AuthRateLimit.SignUpEmailLimit,
	)
	idempotent := middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
		Post("/authenticate", controllers.Authenticate(deps.Auth, logg))
	r.With(middleware.AuthRateLimit(signUpPolicy, rateStore, logg), idempotent).
		Post("/sign-up", controllers.SignUp(deps.Auth, logg))
	r.Get("/order/trackOrder/{trackingId}", ordercontrollers.Track(deps.Orders, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Verifier, logg))
		r.Use(middleware.ResolveUser(deps.Users, logg))

		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", controllers.ProfileFetch(deps.Users, logg))
			r.Put("/profile", controllers.ProfileUpdate(deps.Users, logg))
		})

		r.Route("/customer", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleCustomer))

			r.Get("/cart", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Post("/cart", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Delete("/cart", cartcontrollers.CartClear(deps.Cart, logg))
			r.Delete("/cart/{cartItemId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			r.Get("/coupon/{code}", cartcontrollers.CartApplyCoupon(deps.Cart, logg))
			r.Post("/addition", cartcontrollers.CartIncrement(deps.Cart, logg))
			r.Post("/deduction", cartcontrollers.CartDecrement(deps.Cart, logg))
			r.With(idempotent).Post("/placeOrder", cartcontrollers.PlaceOrder(deps.Cart, logg))
			r.Get("/myorders", ordercontrollers.MyOrders(deps.Orders, logg))

			r.Get("/wishlist", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/wishlist", controllers.WishlistAddItem(deps.Wishlist, logg))
			r.Delete("/wishlist/{productId}", controllers.WishlistRemoveItem(deps.Wishlist, logg))

			r.Get("/faqs", controllers.FAQList(deps.FAQ, logg))

			r.Get("/products", controllers.ProductList(deps.Catalog, logg))
			r.Get("/search/{name}", controllers.ProductSearch(deps.Catalog, logg))
			r.Get("/product/{productId}", controllers.ProductDetail(deps.Catalog, logg))

			r.Get("/ordered-products/{orderId}", controllers.OrderedProducts(deps.Reviews, logg))
			r.Post("/review", controllers.GiveReview(deps.Reviews, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Post("/category", controllers.CategoryCreate(deps.Catalog, logg))
			r.Get("/category", controllers.CategoryList(deps.Catalog, logg))

			r.With(idempotent).Post("/product", controllers.ProductCreate(deps.Catalog, logg))
			r.Get("/products", controllers.ProductList(deps.Catalog, logg))
			r.Get("/search/{name}", controllers.ProductSearch(deps.Catalog, logg))
			r.Get("/product/{productId}", controllers.ProductGet(deps.Catalog, logg))
			r.Put("/product/{productId}", controllers.ProductUpdate(deps.Catalog, logg))
			r.Delete("/product/{productId}", controllers.ProductDelete(deps.Catalog, logg))

			r.Post("/faq", controllers.FAQCreate(deps.FAQ, logg))
			r.Get("/faqs", controllers.FAQList(deps.FAQ, logg))
			r.Delete("/faq/{faqId}", controllers.FAQDelete(deps.FAQ, logg))

			r.With(idempotent).Post("/coupons", controllers.CouponCreate(deps.Coupons, logg))
			r.Get("/coupons", controllers.CouponList(deps.Coupons, logg))

			r.Get("/placedOrders", ordercontrollers.AdminPlacedOrders(deps.Orders, logg))
			r.Get("/order/analytics", analyticscontrollers.OrderAnalytics(deps.Analytics, logg))
			r.Get("/order/{orderId}/{status}", ordercontrollers.AdminChangeStatus(deps.Orders, logg))
		})
	})

	return r
}
