package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"greenpark/internal/auth"
)

type Handlers struct {
	User      *UserReservationHandler
	Admin     *AdminHandler
	AdminAuth *AdminAuthHandler
	Stripe    *StripeWebhookHandler
}

// NewRouter mounts the public, staff and admin endpoints. Stripe may be nil.
func NewRouter(h Handlers, jwtSecret string, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/prices", h.User.ListPrices).Methods("GET")
	r.HandleFunc("/api/availability", h.User.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/quote", h.User.QuotePrice).Methods("POST")
	r.HandleFunc("/api/reservations", h.User.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", h.User.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{code}", h.User.CancelReservation).Methods("DELETE")
	r.HandleFunc("/admin/login", h.AdminAuth.Login).Methods("POST")
	if h.Stripe != nil {
		r.HandleFunc("/webhook/stripe", h.Stripe.HandleWebhook).Methods("POST")
	}

	// Staff endpoints
	staff := r.PathPrefix("/admin").Subrouter()
	staff.Use(auth.StaffAuthMiddleware(jwtSecret))
	staff.HandleFunc("/reservations", h.Admin.ListReservations).Methods("GET")
	staff.HandleFunc("/reservations", h.Admin.CreateReservation).Methods("POST")
	staff.HandleFunc("/reservations/overdue", h.Admin.ListOverdue).Methods("GET")
	staff.HandleFunc("/reservations/{id:[0-9]+}", h.Admin.GetReservation).Methods("GET")
	staff.HandleFunc("/reservations/{id:[0-9]+}/status", h.Admin.UpdateStatus).Methods("PUT")
	staff.HandleFunc("/availability", h.User.CheckAvailability).Methods("POST")

	// Admin endpoints
	admin := staff.NewRoute().Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/staff", h.AdminAuth.CreateStaff).Methods("POST")
	admin.HandleFunc("/categories", h.Admin.ListCategories).Methods("GET")
	admin.HandleFunc("/categories", h.Admin.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}", h.Admin.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/categories/{id:[0-9]+}", h.Admin.DeleteCategory).Methods("DELETE")
	admin.HandleFunc("/categories/{id:[0-9]+}/capacity", h.Admin.UpdateCapacity).Methods("PUT")
	admin.HandleFunc("/special-prices", h.Admin.ListSpecialPrices).Methods("GET")
	admin.HandleFunc("/special-prices", h.Admin.CreateSpecialPrice).Methods("POST")
	admin.HandleFunc("/special-prices/{id:[0-9]+}", h.Admin.UpdateSpecialPrice).Methods("PUT")
	admin.HandleFunc("/special-prices/{id:[0-9]+}", h.Admin.DeleteSpecialPrice).Methods("DELETE")
	admin.HandleFunc("/maintenance", h.Admin.ListMaintenanceWindows).Methods("GET")
	admin.HandleFunc("/maintenance", h.Admin.CreateMaintenanceWindow).Methods("POST")
	admin.HandleFunc("/maintenance/{id:[0-9]+}", h.Admin.UpdateMaintenanceWindow).Methods("PUT")
	admin.HandleFunc("/maintenance/{id:[0-9]+}", h.Admin.DeleteMaintenanceWindow).Methods("DELETE")
	admin.HandleFunc("/addons", h.Admin.ListAddons).Methods("GET")
	admin.HandleFunc("/addons", h.Admin.CreateAddon).Methods("POST")
	admin.HandleFunc("/promo-codes", h.Admin.CreatePromoCode).Methods("POST")
	admin.HandleFunc("/vip", h.Admin.GrantVIP).Methods("POST")

	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
}
