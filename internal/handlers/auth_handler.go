package handlers

import (
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, resp, "Account created. Check your email for the verification code")
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyAccountRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	resp, err := h.authService.Verify(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp, "Account verified")
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.ResendVerification(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "If the account exists, a new code has been sent")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp, "Login successful")
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp, "Token refreshed")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Logged out successfully")
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.InitiatePasswordReset(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "If the account exists, a reset code has been sent")
}

func (h *AuthHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req dto.VerifyResetCodeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.VerifyResetCode(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Code is valid")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Password has been reset")
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	p, err := principal.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), p, &req); err != nil {
		return fail(c, err)
	}
	return ok(c, nil, "Password changed")
}
