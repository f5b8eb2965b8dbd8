package dto

import (
	"time"

	"feedbacktalent/internal/entity"
)

type RegisterRequest struct {
	IDNumber    string `json:"id_number" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=employee candidate company"`
	BirthDate   string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken      string        `json:"access_token,omitempty"`
	ExpiresIn        int64         `json:"expires_in,omitempty"`
	RefreshToken     string        `json:"refresh_token,omitempty"`
	RefreshExpiresIn int64         `json:"refresh_expires_in,omitempty"`
	User             *UserResponse `json:"user,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type VerifyPinRequest struct {
	RequestID string `json:"requestId" validate:"required"`
	Pin       string `json:"pin" validate:"required"`
}

type VerifyPinResponse struct {
	ResetToken string `json:"resetToken"`
}

type ResendPinRequest struct {
	RequestID string `json:"requestId" validate:"required"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UpdateCompanyProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	IDNumber    string    `json:"id_number"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Description *string   `json:"description,omitempty"`
	BirthDate   time.Time `json:"birth_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		IDNumber:    user.IDNumber,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		Description: user.Description,
		BirthDate:   user.BirthDate,
		CreatedAt:   user.CreatedAt,
	}
}

// CompanyResponse is the public shape for company listings: no email, no
// idNumber, never credential fields.
type CompanyResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func CompanyResponsesFromEntities(companies []entity.User) []CompanyResponse {
	responses := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		responses = append(responses, CompanyResponse{
			ID:          companies[i].ID.String(),
			Name:        companies[i].Name,
			Description: companies[i].Description,
		})
	}
	return responses
}
