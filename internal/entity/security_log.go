package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	LoginSuccess    SecurityAction = "login_success"
	LoginFailed     SecurityAction = "login_failed"
	Logout          SecurityAction = "logout"
	ResetRequested  SecurityAction = "reset_requested"
	ResetPinFailed  SecurityAction = "reset_pin_failed"
	ResetVerified   SecurityAction = "reset_verified"
	ResetPinResent  SecurityAction = "reset_pin_resent"
	PasswordChanged SecurityAction = "password_changed"
	SessionRevoked  SecurityAction = "session_revoked"
)

// SecurityLog is an append-only audit trail. Metadata never contains
// credential material, PINs, or reset tokens.
type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(30);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
