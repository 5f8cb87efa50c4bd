package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"educycle/controllers"
	"educycle/controllers/users"
	"educycle/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "educycle-api",
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS: origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"http://localhost:3000", "http://localhost:5173",
		"http://127.0.0.1:3000", "http://127.0.0.1:5173",
	}
	if originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-CRON-KEY", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Rate limiter untuk cron: 1000/jam
	cronLimiter := middleware.NewIPRateLimiter(1000, time.Hour)
	// Public catalog limiter: longgar karena dipakai halaman depan
	catalogLimiter := middleware.NewIPRateLimiter(600, 5*time.Minute)

	// Cron endpoints (protected via X-CRON-KEY header)
	api.Handle("/cron/expire-pending", cronLimiter.Middleware(http.HandlerFunc(users.ExpirePendingHandler))).Methods(http.MethodPost)
	api.Handle("/cron/auto-complete", cronLimiter.Middleware(http.HandlerFunc(users.AutoCompleteHandler))).Methods(http.MethodPost)

	// Public catalog
	api.Handle("/products", catalogLimiter.Middleware(http.HandlerFunc(controllers.GetProductsHandler))).Methods(http.MethodGet)
	api.Handle("/products/{id:[0-9]+}", catalogLimiter.Middleware(http.HandlerFunc(controllers.GetProductDetailHandler))).Methods(http.MethodGet)
	api.Handle("/categories", catalogLimiter.Middleware(http.HandlerFunc(controllers.GetCategoriesHandler))).Methods(http.MethodGet)
	api.Handle("/sellers/{id:[0-9]+}/reviews", catalogLimiter.Middleware(http.HandlerFunc(users.GetSellerReviewsHandler))).Methods(http.MethodGet)

	// Health check under the API prefix as well
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	UsersRoutes(api)
	SetAdminRoutes(api)

	return r
}
