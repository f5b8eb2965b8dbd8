package service

import (
	"context"
	"time"

	"feedbacktalent/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	RefreshTokenTTL time.Duration
}

type ResetConfig struct {
	PinLength      int
	PinTTL         time.Duration
	ResetTokenTTL  time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

// MailSender delivers the plaintext PIN to the account's mailbox. Send
// outcomes are observed synchronously; the flow treats delivery failure as
// fatal to the operation that triggered it.
type MailSender interface {
	SendResetPin(ctx context.Context, email string, pin string, requestID string, expiresIn time.Duration) error
	SendResetPinAgain(ctx context.Context, email string, pin string, requestID string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(user entity.User, sessionID uuid.UUID) (string, time.Duration, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
