package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ougajs-sys/easyflows-backend/api/controllers"
	"github.com/ougajs-sys/easyflows-backend/api/middleware"
	"github.com/ougajs-sys/easyflows-backend/internal/auth"
	"github.com/ougajs-sys/easyflows-backend/internal/clients"
	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/internal/importer"
	"github.com/ougajs-sys/easyflows-backend/internal/orders"
	"github.com/ougajs-sys/easyflows-backend/internal/presence"
	"github.com/ougajs-sys/easyflows-backend/internal/users"
	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// Deps collects everything the HTTP surface needs. Keeping it a struct
// saves the constructor from a fifteen-argument signature.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *db.Client
	Gatherer     prometheus.Gatherer
	AuthService  *auth.Service
	UsersService *users.Service
	OrdersSvc    orders.Service
	OrdersRepo   orders.Repository
	ClientsRepo  clients.Repository
	ClientsCache *clients.ListCache
	ImportSvc    *importer.Service
	DistSvc      *distribution.Service
	DistRepo     distribution.Repository
	PresenceRepo presence.Repository
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Service.ExtraCORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		staff := middleware.RequireRole(logg, "admin", "supervisor", "caller", "delivery")
		backOffice := middleware.RequireRole(logg, "admin", "supervisor")
		adminOnly := middleware.RequireRole(logg, "admin")

		r.Route("/orders", func(r chi.Router) {
			r.With(staff).Get("/", controllers.ListOrders(d.OrdersRepo, logg))
			r.With(staff).Get("/{orderID}", controllers.GetOrder(d.OrdersRepo, logg))
			r.With(staff).Post("/{orderID}/status", controllers.ChangeOrderStatus(d.OrdersSvc, logg))
			r.With(backOffice).Post("/", controllers.CreateOrder(d.OrdersSvc, logg))
			r.With(backOffice).Post("/{orderID}/assign", controllers.AssignOrder(d.OrdersSvc, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.With(staff).Get("/", controllers.ListClients(d.ClientsRepo, d.ClientsCache, logg))
			r.With(staff).Get("/{clientID}", controllers.GetClient(d.ClientsRepo, logg))
			r.With(backOffice).Post("/", controllers.CreateClient(d.ClientsRepo, d.ClientsCache, logg))
			r.With(backOffice).Patch("/{clientID}", controllers.UpdateClient(d.ClientsRepo, d.ClientsCache, logg))
			r.With(backOffice).Delete("/{clientID}", controllers.DeleteClient(d.ClientsRepo, d.ClientsCache, logg))
		})

		r.Route("/imports/clients", func(r chi.Router) {
			r.Use(backOffice)
			r.Post("/", controllers.StartImport(d.ImportSvc, logg))
			r.Get("/progress", controllers.ImportProgress(d.ImportSvc, logg))
			r.Get("/result", controllers.ImportResult(d.ImportSvc, logg))
			r.Post("/cancel", controllers.CancelImport(d.ImportSvc, logg))
			r.Post("/reset", controllers.ResetImport(d.ImportSvc, logg))
		})

		r.Route("/distribution", func(r chi.Router) {
			r.Use(backOffice)
			r.Post("/run", controllers.TriggerDistribution(d.DistSvc, logg))
			r.Get("/runs", controllers.ListDistributionRuns(d.DistRepo, logg))
			r.Get("/runs/{runID}", controllers.GetDistributionRun(d.DistRepo, logg))
		})

		r.With(middleware.RequireRole(logg, "caller")).
			Post("/presence/heartbeat", controllers.Heartbeat(d.PresenceRepo, logg))

		r.With(backOffice).Get("/dashboard/orders", controllers.DashboardStats(d.OrdersRepo, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.ListUsers(d.UsersService, logg))
			r.Post("/", controllers.CreateUser(d.UsersService, logg))
			r.Get("/{userID}", controllers.GetUser(d.UsersService, logg))
			r.Patch("/{userID}", controllers.UpdateUser(d.UsersService, logg))
			r.Post("/{userID}/reset-password", controllers.ResetUserPassword(d.UsersService, logg))
		})
	})

	return r
}
