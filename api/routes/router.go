package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kartik-parmar007/marketplace-backend/api/controllers"
	"github.com/kartik-parmar007/marketplace-backend/api/middleware"
	"github.com/kartik-parmar007/marketplace-backend/internal/authz"
	"github.com/kartik-parmar007/marketplace-backend/internal/catalog"
	"github.com/kartik-parmar007/marketplace-backend/internal/directory"
	"github.com/kartik-parmar007/marketplace-backend/internal/uploads"
	"github.com/kartik-parmar007/marketplace-backend/pkg/config"
	"github.com/kartik-parmar007/marketplace-backend/pkg/db"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	"github.com/kartik-parmar007/marketplace-backend/pkg/identity"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
	"github.com/kartik-parmar007/marketplace-backend/pkg/metrics"
	"github.com/kartik-parmar007/marketplace-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface: public storefront reads, the
// authenticated role-scoped route groups, media serving, and operational
// endpoints.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	collector *metrics.Collector,
	identityClient *identity.Client,
	gate *authz.Gate,
	directoryService directory.Service,
	catalogService catalog.Service,
	mediaStore *uploads.Storage,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if collector != nil {
		r.Use(collector.Middleware())
		r.Get("/metrics", collector.Handler().ServeHTTP)
	}

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
	)
	// A typed nil inside the interface would defeat the middleware's own
	// nil check, so the disabled case is resolved here.
	registerLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		registerLimiter = middleware.RateLimit(registerPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	if mediaStore != nil {
		fileServer := http.StripPrefix(uploads.URLPrefix, http.FileServer(http.Dir(mediaStore.Dir())))
		r.Get(uploads.URLPrefix+"/*", fileServer.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Registration is public; only the IP rate limit applies.
			r.With(registerLimiter).
				Post("/register", controllers.Register(directoryService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(identityClient, logg))
				r.Get("/me", controllers.Me(directoryService, gate, logg))
				r.Get("/role", controllers.Role(gate, logg))
			})
		})

		r.Route("/buyer", func(r chi.Router) {
			r.Get("/products", controllers.BuyerListProducts(catalogService, logg))
			r.Get("/products/{productID}", controllers.BuyerGetProduct(catalogService, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.Auth(identityClient, logg))
			r.Use(middleware.Authorize(gate, logg, enums.RoleSeller))
			r.Post("/products", controllers.SellerCreateProduct(catalogService, mediaStore, logg))
			r.Get("/products/my", controllers.SellerListOwnProducts(catalogService, logg))
			r.Get("/products/all", controllers.SellerListAllProducts(catalogService, logg))
			r.Put("/products/{productID}", controllers.SellerUpdateProduct(catalogService, mediaStore, logg))
			r.Delete("/products/{productID}", controllers.SellerDeleteProduct(catalogService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(identityClient, logg))
			r.Use(middleware.Authorize(gate, logg, enums.RoleAdmin))
			r.Get("/products", controllers.AdminListProducts(catalogService, logg))
			r.Get("/products/{productID}", controllers.AdminGetProduct(catalogService, logg))
			r.Put("/products/{productID}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/products/{productID}", controllers.AdminDeleteProduct(catalogService, logg))
		})
	})

	return r
}
