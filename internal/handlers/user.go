package handlers

import (
	"saldo/internal/services/user"
	"saldo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile serves the cached profile view.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	profile, err := h.userService.Profile(c.Context(), principal.Username)
	if err != nil {
		return response.ServerError(c, "failed to load profile")
	}
	return c.JSON(profile)
}

// UpdateProfile mutates profile fields and invalidates the cached view.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var input struct {
		Name   string  `json:"name"`
		Gender *string `json:"gender" validate:"omitempty,oneof=male female other"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.UnprocessableEntity(c, err.Error())
	}

	profile, err := h.userService.UpdateProfile(c.Context(), principal.ID, user.ProfileUpdate{
		Name:   input.Name,
		Gender: input.Gender,
	})
	if err != nil {
		return response.ServerError(c, "failed to update profile")
	}
	return c.JSON(profile)
}

// GetBalance serves the cached inflow/outflow aggregate.
func (h *UserHandler) GetBalance(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	balance, err := h.userService.Balance(c.Context(), principal.ID)
	if err != nil {
		return response.ServerError(c, "failed to load balance")
	}
	return c.JSON(balance)
}
