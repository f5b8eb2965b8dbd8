package service

import (
	"context"
	"encoding/json"
	"strings"

	"feedbacktalent/internal/entity"
	"feedbacktalent/internal/repository"
	"feedbacktalent/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// genericResetMessage is returned for both known and unknown accounts so the
// endpoint cannot be used to probe which emails are registered.
const genericResetMessage = "If an account exists for that email, a PIN has been sent"

// PasswordResetService drives the PIN recovery flow:
// request -> verify -> (resend) -> complete. Records move through
// pending/verified/used/expired; expired is terminal.
type PasswordResetService struct {
	resets       repository.PasswordResetRepository
	users        repository.UserRepository
	sessions     repository.SessionRepository
	securityLogs repository.SecurityLogRepository

	mail   MailSender
	hasher PasswordHasher
	clock  Clock
	logger *logrus.Logger
	config ResetConfig
}

func NewPasswordResetService(
	resets repository.PasswordResetRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	securityLogs repository.SecurityLogRepository,
	mail MailSender,
	hasher PasswordHasher,
	clock Clock,
	logger *logrus.Logger,
	config ResetConfig,
) *PasswordResetService {
	return &PasswordResetService{
		resets:       resets,
		users:        users,
		sessions:     sessions,
		securityLogs: securityLogs,
		mail:         mail,
		hasher:       hasher,
		clock:        clock,
		logger:       logger,
		config:       config,
	}
}

type RequestResetResult struct {
	Message   string
	RequestID string
}

// RequestReset starts a new flow for the account behind email. Unknown
// accounts get the same success-shaped answer; a bcrypt comparison is burned
// on that path to keep response timing close to the found-account path.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (*RequestResetResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.Verify(dummyPasswordHash, email)
		return &RequestResetResult{Message: genericResetMessage}, nil
	}

	// Only one live request per user; older ones lose.
	if err := s.resets.ExpireActiveByUser(ctx, user.ID, uuid.Nil); err != nil {
		return nil, err
	}

	pin, err := utils.GeneratePIN(s.pinLength())
	if err != nil {
		return nil, err
	}
	pinHash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	reset := &entity.PasswordReset{
		RequestID:    uuid.New(),
		UserID:       user.ID,
		PinHash:      pinHash,
		ExpiresAt:    now.Add(s.config.PinTTL),
		AttemptsLeft: s.maxAttempts(),
		Status:       entity.ResetStatusPending,
		LastSentAt:   &now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, err
	}

	requestID := reset.RequestID.String()
	if err := s.mail.SendResetPin(ctx, user.Email, pin, requestID, s.config.PinTTL); err != nil {
		// An undeliverable PIN must not linger as an attackable pending record.
		if expireErr := s.resets.MarkExpired(ctx, reset.ID); expireErr != nil {
			s.log().WithError(expireErr).Error("failed to expire reset after mail failure")
		}
		s.log().WithError(err).WithField("request_id", requestID).Error("reset pin delivery failed")
		return nil, ErrMailDelivery
	}

	_ = s.logSecurity(ctx, &user.ID, entity.ResetRequested, map[string]any{"request_id": requestID})
	return &RequestResetResult{Message: genericResetMessage, RequestID: requestID}, nil
}

// VerifyPin checks a candidate PIN against a pending request. A mismatch
// burns one attempt; a match transitions the record to verified and returns
// the raw second-stage reset token exactly once.
func (s *PasswordResetService) VerifyPin(ctx context.Context, requestID string, pin string) (string, error) {
	pin = utils.NormalizePIN(pin)
	if strings.TrimSpace(requestID) == "" || pin == "" {
		return "", ErrInvalidInput
	}
	publicID, err := uuid.Parse(strings.TrimSpace(requestID))
	if err != nil {
		return "", ErrInvalidRequest
	}

	reset, err := s.resets.FindByRequestID(ctx, publicID)
	if err != nil {
		return "", err
	}
	if reset == nil || reset.Status != entity.ResetStatusPending {
		return "", ErrInvalidRequest
	}

	now := s.clock.Now()
	if !reset.CanAttempt(now) {
		if err := s.resets.MarkExpired(ctx, reset.ID); err != nil {
			return "", err
		}
		return "", ErrInvalidRequest
	}

	if !s.hasher.Verify(reset.PinHash, pin) {
		if _, err := s.resets.RecordFailedAttempt(ctx, reset.ID, now); err != nil {
			return "", err
		}
		_ = s.logSecurity(ctx, &reset.UserID, entity.ResetPinFailed, map[string]any{"request_id": requestID})
		return "", ErrInvalidRequest
	}

	rawToken, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	ok, err := s.resets.MarkVerified(ctx, reset.ID, utils.HashToken(rawToken), now.Add(s.config.ResetTokenTTL), now)
	if err != nil {
		return "", err
	}
	if !ok {
		// A concurrent call won the pending->verified transition.
		return "", ErrInvalidRequest
	}

	_ = s.logSecurity(ctx, &reset.UserID, entity.ResetVerified, map[string]any{"request_id": requestID})
	return rawToken, nil
}

// ResendPin rearms a still-pending request with a fresh PIN, full TTL, and a
// full attempt budget, keeping the same request id. A server-side cooldown
// bounds how often a PIN can be re-mailed; it arms only after a send that
// actually succeeded.
func (s *PasswordResetService) ResendPin(ctx context.Context, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return ErrInvalidInput
	}
	publicID, err := uuid.Parse(strings.TrimSpace(requestID))
	if err != nil {
		return ErrInvalidRequest
	}

	reset, err := s.resets.FindByRequestID(ctx, publicID)
	if err != nil {
		return err
	}
	if reset == nil || reset.Status != entity.ResetStatusPending {
		return ErrInvalidRequest
	}

	now := s.clock.Now()
	if reset.IsExpired(now) {
		if err := s.resets.MarkExpired(ctx, reset.ID); err != nil {
			return err
		}
		return ErrInvalidRequest
	}
	if reset.LastSentAt != nil && now.Sub(*reset.LastSentAt) < s.config.ResendCooldown {
		return ErrResendCooldown
	}

	user, err := s.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidRequest
	}

	pin, err := utils.GeneratePIN(s.pinLength())
	if err != nil {
		return err
	}
	pinHash, err := s.hasher.Hash(pin)
	if err != nil {
		return err
	}

	ok, err := s.resets.RefreshPin(ctx, reset.ID, pinHash, now.Add(s.config.PinTTL), s.maxAttempts())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidRequest
	}

	if err := s.mail.SendResetPinAgain(ctx, user.Email, pin, requestID); err != nil {
		s.log().WithError(err).WithField("request_id", requestID).Error("reset pin resend delivery failed")
		return ErrMailDelivery
	}

	// Arm the cooldown only now, so a failed delivery can be retried at once.
	if err := s.resets.TouchLastSent(ctx, reset.ID, now); err != nil {
		s.log().WithError(err).Error("failed to record resend time")
	}

	_ = s.logSecurity(ctx, &reset.UserID, entity.ResetPinResent, map[string]any{"request_id": requestID})
	return nil
}

// CompleteReset changes the account password using a still-valid reset token.
// The verified->used transition is a conditional update, so each token can
// succeed at most once even under concurrent calls.
func (s *PasswordResetService) CompleteReset(ctx context.Context, resetToken string, newPassword string) error {
	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" || len(newPassword) < 8 {
		return ErrInvalidInput
	}

	reset, err := s.resets.FindVerifiedByTokenHash(ctx, utils.HashToken(resetToken))
	if err != nil {
		return err
	}
	if reset == nil {
		return ErrInvalidToken
	}

	now := s.clock.Now()
	if !reset.CanComplete(now) {
		if err := s.resets.MarkExpired(ctx, reset.ID); err != nil {
			return err
		}
		return ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}

	// Claim the token before touching the credential.
	ok, err := s.resets.MarkUsed(ctx, reset.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	// Kill any concurrently started flows and every live session.
	if err := s.resets.ExpireActiveByUser(ctx, user.ID, reset.ID); err != nil {
		s.log().WithError(err).Error("failed to expire sibling reset requests")
	}
	if err := s.sessions.RevokeAllByUser(ctx, user.ID); err != nil {
		s.log().WithError(err).Error("failed to revoke sessions after password change")
	}

	_ = s.logSecurity(ctx, &user.ID, entity.PasswordChanged, map[string]any{"source": "password_reset"})
	return nil
}

func (s *PasswordResetService) pinLength() int {
	if s.config.PinLength > 0 {
		return s.config.PinLength
	}
	return 6
}

func (s *PasswordResetService) maxAttempts() int {
	if s.config.MaxAttempts > 0 {
		return s.config.MaxAttempts
	}
	return 5
}

func (s *PasswordResetService) log() *logrus.Logger {
	if s.logger == nil {
		return logrus.StandardLogger()
	}
	return s.logger
}

func (s *PasswordResetService) logSecurity(
	ctx context.Context,
	userID *uuid.UUID,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	if s.securityLogs == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}
	return s.securityLogs.Log(ctx, &entity.SecurityLog{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	})
}
