package repository

import (
	"context"
	"errors"
	"time"

	"feedbacktalent/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetRepository persists reset-flow records. State transitions are
// conditional updates guarded on the current status so that racing requests
// for the same record cannot both win.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *entity.PasswordReset) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*entity.PasswordReset, error)
	FindVerifiedByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error)
	ExpireActiveByUser(ctx context.Context, userID uuid.UUID, except uuid.UUID) error
	MarkExpired(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID, tokenHash string, tokenExpiresAt time.Time, verifiedAt time.Time) (bool, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, attemptAt time.Time) (bool, error)
	RefreshPin(ctx context.Context, id uuid.UUID, pinHash string, expiresAt time.Time, attempts int) (bool, error)
	TouchLastSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	CleanupExpired(ctx context.Context) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *entity.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *passwordResetRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*entity.PasswordReset, error) {
	var reset entity.PasswordReset
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&reset).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &reset, err
}

func (r *passwordResetRepository) FindVerifiedByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error) {
	var reset entity.PasswordReset
	err := r.db.WithContext(ctx).
		Where("reset_token_hash = ? AND status = ?", tokenHash, entity.ResetStatusVerified).
		First(&reset).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &reset, err
}

// ExpireActiveByUser force-expires every live record for the user, so at most
// one pending or verified request exists per account. except skips the record
// that is superseding the others; pass uuid.Nil to expire all.
func (r *passwordResetRepository) ExpireActiveByUser(ctx context.Context, userID uuid.UUID, except uuid.UUID) error {
	query := r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("user_id = ? AND status IN ?", userID, []entity.ResetStatus{entity.ResetStatusPending, entity.ResetStatusVerified})
	if except != uuid.Nil {
		query = query.Where("id <> ?", except)
	}
	return query.Update("status", entity.ResetStatusExpired).Error
}

func (r *passwordResetRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ? AND status IN ?", id, []entity.ResetStatus{entity.ResetStatusPending, entity.ResetStatusVerified}).
		Update("status", entity.ResetStatusExpired).
		Error
}

func (r *passwordResetRepository) MarkVerified(
	ctx context.Context,
	id uuid.UUID,
	tokenHash string,
	tokenExpiresAt time.Time,
	verifiedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ? AND status = ?", id, entity.ResetStatusPending).
		Updates(map[string]any{
			"status":                 entity.ResetStatusVerified,
			"reset_token_hash":       tokenHash,
			"reset_token_expires_at": tokenExpiresAt,
			"verified_at":            verifiedAt,
			"last_attempt_at":        verifiedAt,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ? AND status = ?", id, entity.ResetStatusVerified).
		Updates(map[string]any{
			"status":  entity.ResetStatusUsed,
			"used_at": usedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// RecordFailedAttempt burns one attempt and expires the record when the
// counter reaches zero, in a single guarded update.
func (r *passwordResetRepository) RecordFailedAttempt(ctx context.Context, id uuid.UUID, attemptAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ? AND status = ? AND attempts_left > 0", id, entity.ResetStatusPending).
		Updates(map[string]any{
			"attempts_left":   gorm.Expr("attempts_left - 1"),
			"last_attempt_at": attemptAt,
			"status": gorm.Expr(
				"CASE WHEN attempts_left - 1 <= 0 THEN ? ELSE status END",
				entity.ResetStatusExpired,
			),
		})
	return result.RowsAffected > 0, result.Error
}

// RefreshPin rearms a still-pending record with a new PIN hash, a fresh
// expiry window, and a full attempt budget. The send timestamp is stamped
// separately via TouchLastSent once the mail actually went out.
func (r *passwordResetRepository) RefreshPin(
	ctx context.Context,
	id uuid.UUID,
	pinHash string,
	expiresAt time.Time,
	attempts int,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ? AND status = ?", id, entity.ResetStatusPending).
		Updates(map[string]any{
			"pin_hash":      pinHash,
			"expires_at":    expiresAt,
			"attempts_left": attempts,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *passwordResetRepository) TouchLastSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.PasswordReset{}).
		Where("id = ?", id).
		Update("last_sent_at", sentAt).
		Error
}

// CleanupExpired drops records whose PIN window closed. Stands in for the
// store-native TTL index of a document database; every read path re-checks
// expiry, so correctness never depends on this running.
func (r *passwordResetRepository) CleanupExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < NOW()").
		Delete(&entity.PasswordReset{}).
		Error
}
