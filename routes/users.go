package routes

import (
	"net/http"
	"time"

	"educycle/controllers/auth"
	"educycle/controllers/users"
	"educycle/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes mendaftarkan semua route terkait user ke subrouter yang diberikan
func UsersRoutes(api *mux.Router) {
	// Rate limiter login/register: 60 per IP per 5 menit
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session umum: 300 per IP per menit
	userLimiter := middleware.NewIPRateLimiter(300, time.Minute)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Profile & password
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetProfileHandler)))).Methods(http.MethodGet)
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateProfileHandler)))).Methods(http.MethodPut)
	api.Handle("/users/change-password", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ChangePasswordHandler)))).Methods(http.MethodPost)

	// Seller dashboard
	api.Handle("/users/dashboard", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetDashboardHandler)))).Methods(http.MethodGet)

	// Own listings
	api.Handle("/users/products", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CreateProductHandler)))).Methods(http.MethodPost)
	api.Handle("/users/products", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetMyProductsHandler)))).Methods(http.MethodGet)
	api.Handle("/users/products/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateProductHandler)))).Methods(http.MethodPut)
	api.Handle("/users/products/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.DeleteProductHandler)))).Methods(http.MethodDelete)

	// Transactions: create, list, detail
	api.Handle("/users/transactions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CreateTransactionHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetTransactionsHandler)))).Methods(http.MethodGet)
	api.Handle("/users/transactions/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetTransactionDetailHandler)))).Methods(http.MethodGet)

	// Transaction lifecycle actions
	api.Handle("/users/transactions/{id:[0-9]+}/accept", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.AcceptTransactionHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/reject", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.RejectTransactionHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/cancel", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CancelTransactionHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/begin-meeting", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.BeginMeetingHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/generate-otp", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GenerateOtpHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/verify-otp", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.VerifyOtpHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/confirm-receipt", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ConfirmReceiptHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/confirm-handover", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ConfirmHandoverHandler)))).Methods(http.MethodPost)
	api.Handle("/users/transactions/{id:[0-9]+}/dispute", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.DisputeTransactionHandler)))).Methods(http.MethodPost)

	// Review after completion
	api.Handle("/users/transactions/{id:[0-9]+}/review", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CreateReviewHandler)))).Methods(http.MethodPost)

	// Notifications
	api.Handle("/users/notifications", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetNotificationsHandler)))).Methods(http.MethodGet)
	api.Handle("/users/notifications/read-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.MarkAllNotificationsReadHandler)))).Methods(http.MethodPost)
	api.Handle("/users/notifications/{id}/read", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.MarkNotificationReadHandler)))).Methods(http.MethodPost)
}
