package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"feedbacktalent/api/handler"
	apiMiddleware "feedbacktalent/api/middleware"
	"feedbacktalent/api/routes"
	"feedbacktalent/config"
	"feedbacktalent/internal/repository"
	"feedbacktalent/internal/service"
	"feedbacktalent/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}

	validate := validator.New()

	accessManager := utils.JWTManager{
		Secret:         []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	passwordHasher := service.BcryptPasswordHasher{}
	clock := service.RealClock{}

	authService := service.NewAuthService(
		userRepo,
		sessionRepo,
		securityRepo,
		passwordHasher,
		service.JWTAccessIssuer{Manager: &accessManager},
		clock,
		service.AuthConfig{
			RefreshTokenTTL: cfg.RefreshTTL,
		},
	)

	resetService := service.NewPasswordResetService(
		resetRepo,
		userRepo,
		sessionRepo,
		securityRepo,
		buildMailSender(cfg, logger),
		passwordHasher,
		clock,
		logger,
		service.ResetConfig{
			PinLength:      cfg.PinLength,
			PinTTL:         cfg.PinTTL,
			ResetTokenTTL:  cfg.ResetTokenTTL,
			MaxAttempts:    cfg.MaxPinAttempts,
			ResendCooldown: cfg.ResendCooldown,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.SecureCookies = cfg.SecureCookies
	resetHandler := handler.NewPasswordResetHandler(resetService, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	go runCleanup(context.Background(), logger, sessionRepo, resetRepo)

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &accessManager}
	router := routes.NewRouter(app, authHandler, resetHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// runCleanup periodically drops expired sessions and reset requests. Reads
// re-check expiry themselves, so this only keeps the tables small.
func runCleanup(ctx context.Context, logger *logrus.Logger, sessions repository.SessionRepository, resets repository.PasswordResetRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.CleanupExpired(ctx); err != nil {
				logger.WithError(err).Warn("session cleanup failed")
			}
			if err := resets.CleanupExpired(ctx); err != nil {
				logger.WithError(err).Warn("password reset cleanup failed")
			}
		}
	}
}

// buildMailSender prefers the Resend API, then SMTP, then the dev log sink.
func buildMailSender(cfg config.Config, logger *logrus.Logger) service.MailSender {
	if cfg.ResendAPIKey != "" {
		return service.NewResendMailSender(cfg.ResendAPIKey, cfg.MailFrom, cfg.AppName)
	}
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		return service.NewSMTPMailSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
			cfg.MailFrom, cfg.AppName, cfg.MailTimeout,
		)
	}
	logger.Warn("no mail transport configured, PINs will be logged")
	return &service.LogMailSender{Logger: logger}
}
