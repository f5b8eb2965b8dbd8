package handler

import (
	"net/http"

	"feedbacktalent/internal/dto"
	"feedbacktalent/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PasswordResetHandler struct {
	Service  *service.PasswordResetService
	Validate *validator.Validate
}

func NewPasswordResetHandler(svc *service.PasswordResetService, validate *validator.Validate) *PasswordResetHandler {
	return &PasswordResetHandler{Service: svc, Validate: validate}
}

func (h *PasswordResetHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.RequestReset(c.Request().Context(), req.Email)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ForgotPasswordResponse{
		Message:   result.Message,
		RequestID: result.RequestID,
	})
}

func (h *PasswordResetHandler) VerifyPin(c echo.Context) error {
	var req dto.VerifyPinRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	resetToken, err := h.Service.VerifyPin(c.Request().Context(), req.RequestID, req.Pin)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VerifyPinResponse{ResetToken: resetToken})
}

func (h *PasswordResetHandler) ResendPin(c echo.Context) error {
	var req dto.ResendPinRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ResendPin(c.Request().Context(), req.RequestID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "PIN resent"})
}

func (h *PasswordResetHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.CompleteReset(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

func (h *PasswordResetHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
