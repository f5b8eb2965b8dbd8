package routes

import (
	"time"

	"feedbacktalent/api/handler"
	"feedbacktalent/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Reset          *handler.PasswordResetHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	ResetRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	resetHandler *handler.PasswordResetHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Reset:          resetHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		ResetRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.AuthRate.Middleware())
	e.POST("/auth/refresh", r.Auth.Refresh, r.AuthRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	e.POST("/auth/logout-all", r.Auth.LogoutAll, r.AuthMiddleware.RequireAuth)

	e.POST("/auth/forgot-password", r.Reset.ForgotPassword, r.ResetRate.Middleware())
	e.POST("/auth/verify-pin", r.Reset.VerifyPin, r.ResetRate.Middleware())
	e.POST("/auth/resend-pin", r.Reset.ResendPin, r.ResetRate.Middleware())
	e.POST("/auth/reset-password", r.Reset.ResetPassword, r.ResetRate.Middleware())

	e.GET("/me", r.Auth.Me, r.AuthMiddleware.RequireAuth)
	e.PUT("/company/profile", r.Auth.UpdateCompanyProfile, r.AuthMiddleware.RequireAuth, middleware.RequireRole("company"))
	e.GET("/companies", r.Auth.ListCompanies)
	e.GET("/companies/search", r.Auth.SearchCompanies)
}
