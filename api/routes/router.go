package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pim-console/api/controllers"
	"github.com/angelmondragon/pim-console/api/middleware"
	"github.com/angelmondragon/pim-console/internal/productdetail"
	"github.com/angelmondragon/pim-console/pkg/config"
	"github.com/angelmondragon/pim-console/pkg/enums"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/redis"
)

type sessionStore interface {
	middleware.SessionLoader
	controllers.SessionStore
}

type rateStore interface {
	redis.Pinger
	middleware.RateLimitStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient rateStore,
	sessions sessionStore,
	registry *productdetail.Registry,
	upstream controllers.Upstream,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.Origins()),
	)

	var pinger redis.Pinger
	var limiter middleware.RateLimitStore
	if redisClient != nil {
		pinger = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, pinger, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	detail := controllers.Detail{
		Registry:       registry,
		Upstream:       upstream,
		Logger:         logg,
		MaxUploadBytes: cfg.Media.UploadMaxFormBytes,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(middleware.SessionOpenPolicy(cfg.Limits), limiter, logg)).
			Post("/sessions", controllers.SessionOpen(sessions, logg))
		r.Get("/sessions/logout-reason/{sessionID}", controllers.SessionLogoutReason(sessions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ConsoleSession(sessions, logg))

			r.Delete("/sessions", controllers.SessionClose(sessions, registry, logg))
			r.Get("/products", controllers.ProductList(upstream, logg))

			r.Route("/products/{productID}/detail", func(r chi.Router) {
				r.Post("/", detail.Mount())
				r.Get("/", detail.View())
				r.Delete("/", detail.Close())

				r.Patch("/fields", detail.SetField())
				r.Post("/name-edit", detail.BeginNameEdit())
				r.Delete("/name-edit", detail.CancelNameEdit())
				r.Patch("/countries/{country}", detail.UpdateCountry())

				r.Post("/videos", detail.AddVideo())
				r.Get("/blobs/{ref}", detail.Blob())
				r.Post("/{kind}/uploads", detail.Uploads())
				r.Post("/{kind}/reorder", detail.Reorder())
				r.Post("/{kind}/drag", detail.DragStart())
				r.Post("/{kind}/drop", detail.Drop())
				r.Delete("/{kind}/drag", detail.DragCancel())
				r.Delete("/{kind}/{itemID}", detail.RemoveItem())

				r.Post("/save", detail.Save())
				r.Post("/confirmation", detail.OpenConfirmation())
				r.Post("/confirmation/advance", detail.AdvanceConfirmation())
				r.Post("/confirmation/submit", detail.SubmitConfirmation())
				r.Delete("/confirmation", detail.CancelConfirmation())
				r.Get("/notifications", detail.Notifications())
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdministrator))
				r.Get("/users", controllers.UserList(upstream, logg))
				r.Put("/users/{userID}", controllers.UserSave(upstream, logg))
			})
		})
	})

	return r
}
