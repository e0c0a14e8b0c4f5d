package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"workorders/internal/model"
	"workorders/internal/mw"
	"workorders/internal/service"
)

type Services struct {
	Auth          *service.AuthService
	Orders        *service.OrderService
	Users         *service.UserService
	Metrics       *service.MetricsService
	Notifications *service.NotificationService
	Codes         *service.AccessCodeService
	Groups        *service.GroupService
}

func NewRouter(svc Services, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", RegisterHandler(svc.Auth, jwtSecret))
	r.Post("/api/user/login", LoginHandler(svc.Auth, jwtSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(jwtSecret))

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", CreateOrderHandler(svc.Orders))
			r.Get("/", ListOrdersHandler(svc.Orders))
			r.Get("/accepted", ListAcceptedOrdersHandler(svc.Orders))
			r.Get("/table", OrderTableHandler(svc.Orders))
			r.Get("/stats", MyStatsHandler(svc.Metrics))
			r.Get("/{id}", GetOrderHandler(svc.Orders))
			r.Put("/{id}", UpdateOrderHandler(svc.Orders))
			r.Post("/{id}/status", SetOrderStatusHandler(svc.Orders))
		})

		r.Get("/api/users/{id}/stats", UserStatsHandler(svc.Metrics, svc.Users))
		r.Get("/api/notifications", ListNotificationsHandler(svc.Notifications))
		r.Post("/api/notifications/{id}/read", MarkNotificationReadHandler(svc.Notifications))
		r.Get("/api/groups", ListGroupsHandler(svc.Groups))
		r.Get("/api/groups/{name}", GetGroupHandler(svc.Groups))

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleAdmin))

			r.Post("/codes", CreateCodeHandler(svc.Codes))
			r.Get("/codes", ListCodesHandler(svc.Codes))
			r.Post("/sweep", SweepHandler(svc.Orders))
			r.Post("/groups", CreateGroupHandler(svc.Groups))
			r.Delete("/users/{email}", DeleteUserHandler(svc.Users))
			r.Get("/users/{email}/orders", UserOrdersHandler(svc.Orders))
		})
	})

	return r
}
