package handlers

import (
	"errors"

	"saldo/internal/repositories"
	"saldo/internal/services/auth"
	"saldo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates by email+password, returning session tokens and
// a freshly rotated API key pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, "email and password are required")
	}

	result, err := h.authService.Login(c.Context(), input.Email, input.Password, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidLogin):
			return response.Unauthorized(c, "invalid email or password")
		case errors.Is(err, auth.ErrAccountDisabled):
			return response.Error(c, fiber.StatusForbidden, "account is disabled")
		default:
			return response.ServerError(c, "login failed")
		}
	}

	return c.JSON(result)
}

// Register creates a new active user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=3,max=32"`
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.UnprocessableEntity(c, err.Error())
	}

	user, err := h.authService.Register(c.Context(), auth.RegisterInput{
		Email:    input.Email,
		Username: input.Username,
		Name:     input.Name,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailTaken):
			return response.Error(c, fiber.StatusConflict, "email already taken")
		case errors.Is(err, repositories.ErrUsernameTaken):
			return response.Error(c, fiber.StatusConflict, "username already taken")
		default:
			return response.ServerError(c, "registration failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}
