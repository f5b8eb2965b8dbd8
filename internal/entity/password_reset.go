package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResetStatus string

const (
	ResetStatusPending  ResetStatus = "pending"
	ResetStatusVerified ResetStatus = "verified"
	ResetStatusUsed     ResetStatus = "used"
	ResetStatusExpired  ResetStatus = "expired"
)

// PasswordReset is one attempt at the PIN-based recovery flow. RequestID is
// the only identifier handed to the client; it never exposes the user id.
// The PIN and the second-stage reset token are stored hashed only.
type PasswordReset struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_password_resets_user_status"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`

	PinHash      string      `gorm:"type:text;not null"`
	ExpiresAt    time.Time   `gorm:"not null;index"`
	AttemptsLeft int         `gorm:"not null"`
	Status       ResetStatus `gorm:"type:varchar(10);not null;index:idx_password_resets_user_status"`

	ResetTokenHash      *string `gorm:"type:text;uniqueIndex"`
	ResetTokenExpiresAt *time.Time

	VerifiedAt    *time.Time
	UsedAt        *time.Time
	LastAttemptAt *time.Time
	LastSentAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// IsExpired reports whether the PIN window is over, by time or by status.
func (p PasswordReset) IsExpired(now time.Time) bool {
	return p.Status == ResetStatusExpired || !now.Before(p.ExpiresAt)
}

// CanAttempt reports whether one more PIN entry may be accepted.
func (p PasswordReset) CanAttempt(now time.Time) bool {
	return p.Status == ResetStatusPending && !p.IsExpired(now) && p.AttemptsLeft > 0
}

// CanComplete reports whether the reset token on this record may still
// authorize a password change.
func (p PasswordReset) CanComplete(now time.Time) bool {
	return p.Status == ResetStatusVerified &&
		p.ResetTokenExpiresAt != nil &&
		now.Before(*p.ResetTokenExpiresAt)
}
