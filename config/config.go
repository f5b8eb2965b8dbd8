package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the process needs, resolved once at startup.
// Nothing else in the codebase reads environment variables.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	AppName     string

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	RefreshTTL     time.Duration

	PinLength      int
	PinTTL         time.Duration
	ResetTokenTTL  time.Duration
	MaxPinAttempts int
	ResendCooldown time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	MailFrom      string
	MailTimeout   time.Duration
	ResendAPIKey  string
	CookieDomain  string
	SecureCookies bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("error load env %s", err)
	}

	return Config{
		HTTPAddr:    envString("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AppName:     envString("APP_NAME", "Feedback Talent"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      os.Getenv("JWT_ISSUER"),
		AccessTokenTTL: envMinutes("ACCESS_TOKEN_TTL_MIN", 15*time.Minute),
		RefreshTTL:     envMinutes("REFRESH_TOKEN_TTL_MIN", 30*24*time.Hour),

		PinLength:      envInt("RESET_PIN_LENGTH", 6),
		PinTTL:         envMinutes("RESET_PIN_TTL_MIN", 10*time.Minute),
		ResetTokenTTL:  envMinutes("RESET_TOKEN_TTL_MIN", 15*time.Minute),
		MaxPinAttempts: envInt("RESET_MAX_ATTEMPTS", 5),
		ResendCooldown: envSeconds("RESET_RESEND_COOLDOWN_SEC", 60*time.Second),

		SMTPHost:      envString("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      envInt("SMTP_PORT", 465),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASS"),
		MailFrom:      envString("MAIL_FROM", os.Getenv("SMTP_USER")),
		MailTimeout:   envSeconds("MAIL_TIMEOUT_SEC", 10*time.Second),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		SecureCookies: os.Getenv("COOKIE_SECURE") != "false",
	}
}

func envString(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envMinutes(key string, fallback time.Duration) time.Duration {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Minute
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}
