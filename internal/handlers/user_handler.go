package handlers

import (
	"ingreedio/internal/dto"
	"ingreedio/internal/middleware"
	"ingreedio/internal/models"
	"ingreedio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests for the caller's profile and for user administration.
type UserHandler struct {
	users    *services.UserService
	products *services.ProductService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, products *services.ProductService, validate *validator.Validate, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		users:    users,
		products: products,
		validate: validate,
		log:      log,
	}
}

// RegisterRoutes registers the user routes. Every route requires authentication.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)

	userRoutes := router.Group("/users", auth)
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Get("/me/preferences", h.HandleGetPreferences)
	userRoutes.Post("/me/preferences", h.HandleAddPreference)
	userRoutes.Delete("/me/preferences/:id", h.HandleRemovePreference)
	userRoutes.Get("/me/favourites", h.HandleGetFavourites)

	userRoutes.Patch("/:id/block", admin, h.HandleBlockUser)
	userRoutes.Patch("/:id/unblock", admin, h.HandleUnblockUser)
	userRoutes.Post("/:id/roles", admin, h.HandleAssignRole)
}

// HandleGetMe returns the caller's own account.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToUserDTO(*user))
}

// HandleGetPreferences lists the caller's preferences.
func (h *UserHandler) HandleGetPreferences(c *fiber.Ctx) error {
	preferences, err := h.users.GetPreferences(c.UserContext(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToPreferenceDTOs(preferences))
}

// HandleAddPreference creates a preference for the caller.
func (h *UserHandler) HandleAddPreference(c *fiber.Ctx) error {
	var req dto.CreatePreferenceRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	preference, err := h.users.AddPreference(c.UserContext(), middleware.IdentityFrom(c).UserID, req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPreferenceDTO(*preference))
}

// HandleRemovePreference deletes one of the caller's preferences.
func (h *UserHandler) HandleRemovePreference(c *fiber.Ctx) error {
	if err := h.users.RemovePreference(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetFavourites lists the caller's favourite products.
func (h *UserHandler) HandleGetFavourites(c *fiber.Ctx) error {
	products, err := h.products.Favourites(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToProductDTOs(products))
}

// HandleBlockUser blocks a user from signing in.
func (h *UserHandler) HandleBlockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, true)
}

// HandleUnblockUser lifts the block on a user.
func (h *UserHandler) HandleUnblockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, false)
}

func (h *UserHandler) setBlocked(c *fiber.Ctx, blocked bool) error {
	userID := c.Params("id")
	if err := h.users.SetBlocked(c.UserContext(), middleware.IdentityFrom(c), userID, blocked); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "User " + userID + " updated successfully",
		"blocked": blocked,
	})
}

// HandleAssignRole grants a role to a user.
func (h *UserHandler) HandleAssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	userID := c.Params("id")
	if err := h.users.AssignRole(c.UserContext(), middleware.IdentityFrom(c), userID, req.Role); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Role " + req.Role + " assigned to user " + userID,
	})
}
