package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleEmployee  UserRole = "employee"
	UserRoleCandidate UserRole = "candidate"
	UserRoleCompany   UserRole = "company"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IDNumber     string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         UserRole  `gorm:"type:varchar(20);not null"`

	Description *string `gorm:"type:text"`
	BirthDate   time.Time

	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []Session
}
