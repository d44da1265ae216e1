package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/handlers"
	"github.com/spendtrail/spendtrail/internal/middleware"
	"github.com/spendtrail/spendtrail/internal/repositories"
)

// RegisterRoutes mounts the /api/v1 surface.
func RegisterRoutes(
	router chi.Router,
	userHandler *handlers.UserHandler,
	expenseHandler *handlers.ExpenseHandler,
	categoryHandler *handlers.CategoryHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api/v1", func(r chi.Router) {
		// Public routes, rate limited per IP on the credential endpoints
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/users/register", userHandler.Register)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/users/login", userHandler.Login)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/users/forget-password", userHandler.ForgetPassword)
		r.Get("/users/verify-email", userHandler.VerifyEmail)
		r.Post("/users/reset-password", userHandler.ResetPassword)

		// Protected routes behind the access-token gate
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(tokenManager, userRepo))

			r.Post("/users/logout", userHandler.Logout)
			r.Post("/users/refresh-tokens", userHandler.RefreshTokens)
			r.Get("/users/profile", userHandler.GetProfile)
			r.Patch("/users/profile", userHandler.UpdateProfile)
			r.Patch("/users/change-password", userHandler.ChangePassword)
			r.Get("/users/resend-verification", userHandler.ResendVerification)
			r.Delete("/users/delete", userHandler.DeleteAccount)

			r.Post("/expenses/add-expense", expenseHandler.Create)
			r.Get("/expenses/all", expenseHandler.List)
			r.Get("/expenses/{id}", expenseHandler.Get)
			r.Patch("/expenses/{id}", expenseHandler.Update)
			r.Delete("/expenses/delete/{id}", expenseHandler.Delete)

			r.Get("/categories", categoryHandler.List)
		})
	})
}
