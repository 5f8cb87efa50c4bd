package routes

import (
	"net/http"
	"time"

	"educycle/controllers/admins"
	"educycle/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.LoginHandler))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.DashboardHandler)).Methods(http.MethodGet)

	// User management
	adminRouter.Handle("/users", http.HandlerFunc(admins.GetUsersHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}/status", http.HandlerFunc(admins.UpdateUserStatusHandler)).Methods(http.MethodPatch)

	// Listing moderation
	adminRouter.Handle("/products", http.HandlerFunc(admins.GetProductsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/products/{id:[0-9]+}/moderate", http.HandlerFunc(admins.ModerateProductHandler)).Methods(http.MethodPost)

	// Category management
	adminRouter.Handle("/categories", http.HandlerFunc(admins.ListCategoriesHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/categories", http.HandlerFunc(admins.CreateCategoryHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/categories/{id:[0-9]+}", http.HandlerFunc(admins.UpdateCategoryHandler)).Methods(http.MethodPut)
	adminRouter.Handle("/categories/{id:[0-9]+}", http.HandlerFunc(admins.DeleteCategoryHandler)).Methods(http.MethodDelete)

	// Transaction oversight & dispute resolution
	adminRouter.Handle("/transactions", http.HandlerFunc(admins.GetTransactionsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/disputes", http.HandlerFunc(admins.GetDisputesHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/disputes/{id:[0-9]+}/resolve", http.HandlerFunc(admins.ResolveDisputeHandler)).Methods(http.MethodPost)
}
