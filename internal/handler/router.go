package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/puntodeagua/internal/middleware"
	"github.com/mmeshcher/puntodeagua/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса доставки воды.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/ping", h.Ping)

	staff := custommiddleware.RequireRole(model.RoleDistributor, model.RoleAdmin)
	admin := custommiddleware.RequireRole(model.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.Register)
		r.Post("/user/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/user/profile", h.GetProfile)
			r.Put("/user/profile", h.UpdateProfile)

			r.Post("/orders", h.PlaceOrder)
			r.Get("/orders/history", h.GetHistory)
			r.With(admin).Get("/orders/history/{accountID}", h.GetAccountHistory)

			r.Group(func(r chi.Router) {
				r.Use(staff)

				r.Get("/orders/{orderID}", h.GetOrder)
				r.Put("/orders/{orderID}/status", h.ChangeStatus)

				r.Get("/distributor/orders/pending", h.PendingOrders)
				r.Get("/distributor/orders/in-flight", h.InFlightOrders)
				r.Get("/distributor/orders/delivered", h.DeliveredOrders)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)

				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Get("/users/{accountID}", h.GetUser)
				r.Put("/users/{accountID}", h.UpdateUser)
				r.Delete("/users/{accountID}", h.DeleteUser)
				r.Put("/users/{accountID}/status", h.SetUserStatus)
				r.Put("/users/{accountID}/role", h.SetUserRole)

				r.Get("/orders", h.ListOrders)
				r.Get("/sales/summary", h.SalesSummary)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
