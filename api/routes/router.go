package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinoteca/vinoteca-backend/api/controllers"
	"github.com/vinoteca/vinoteca-backend/api/middleware"
	cartsvc "github.com/vinoteca/vinoteca-backend/internal/carts"
	eventsvc "github.com/vinoteca/vinoteca-backend/internal/events"
	ordersvc "github.com/vinoteca/vinoteca-backend/internal/orders"
	productsvc "github.com/vinoteca/vinoteca-backend/internal/products"
	"github.com/vinoteca/vinoteca-backend/pkg/auth"
	"github.com/vinoteca/vinoteca-backend/pkg/config"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
)

// Pinger is the readiness surface backing stores expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Verifier auth.TokenVerifier
	Registry *prometheus.Registry

	DBPinger    Pinger
	RedisPinger Pinger

	Events   *eventsvc.Service
	Products *productsvc.Service
	Carts    *cartsvc.Service
	Orders   *ordersvc.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(deps.Events, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Verifier, cfg.Admin, logg))
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateEvent(deps.Events, logg))
				r.Put("/{id}", controllers.UpdateEvent(deps.Events, logg))
				r.Delete("/{id}", controllers.DeleteEvent(deps.Events, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Verifier, cfg.Admin, logg))
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Put("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
			})
		})

		r.Route("/carts/{userId}", func(r chi.Router) {
			r.Use(middleware.Auth(deps.Verifier, cfg.Admin, logg))
			r.Get("/", controllers.FetchCart(deps.Carts, logg))
			r.Post("/", controllers.UpsertCart(deps.Carts, logg))
			r.Delete("/", controllers.DeleteCart(deps.Carts, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(deps.Verifier, cfg.Admin, logg))
			r.Post("/", controllers.PlaceOrder(deps.Orders, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
		})
	})

	return r
}
