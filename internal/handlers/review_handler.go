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

// ReviewHandler handles HTTP requests for reviews and their moderation.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, validate *validator.Validate, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validate,
		log:      log,
	}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	moderator := middleware.RequireRole(models.RoleModerator)

	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/", auth, moderator, h.HandleGetReviews)
	reviewRoutes.Get("/product/:productId", h.HandleGetProductReviews)
	reviewRoutes.Post("/", auth, h.HandleCreateReview)
	reviewRoutes.Put("/:id", auth, h.HandleUpdateReview)
	reviewRoutes.Patch("/:id/report", auth, h.HandleReportReview)
	reviewRoutes.Patch("/:id/rate", auth, h.HandleRateReview)
	reviewRoutes.Patch("/:id/reset", auth, moderator, h.HandleResetReports)
	reviewRoutes.Delete("/:id", auth, h.HandleDeleteReview)
}

// HandleGetReviews lists every review, or the reviews of the userId query parameter.
func (h *ReviewHandler) HandleGetReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.UserContext(), middleware.IdentityFrom(c), c.Query("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTOs(reviews))
}

// HandleGetProductReviews lists every review of a product.
func (h *ReviewHandler) HandleGetProductReviews(c *fiber.Ctx) error {
	reviews, err := h.service.GetForProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTOs(reviews))
}

// HandleCreateReview stores a review written by the caller.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	review, err := h.service.CreateReview(c.UserContext(), middleware.IdentityFrom(c), req.ProductID, req.Text, req.Rating)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReviewDTO(*review))
}

// HandleUpdateReview replaces the text and rating of the caller's review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req dto.ReviewUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	review, err := h.service.Update(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), req.Text, req.Rating)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTO(*review))
}

// HandleReportReview adds one report to a review.
func (h *ReviewHandler) HandleReportReview(c *fiber.Ctx) error {
	review, err := h.service.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTO(*review))
}

// HandleRateReview overwrites the rating of a review.
func (h *ReviewHandler) HandleRateReview(c *fiber.Ctx) error {
	var req dto.RateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	review, err := h.service.Rate(c.UserContext(), c.Params("id"), req.Rating)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTO(*review))
}

// HandleResetReports clears the report counter of a review.
func (h *ReviewHandler) HandleResetReports(c *fiber.Ctx) error {
	review, err := h.service.ResetReports(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReviewDTO(*review))
}

// HandleDeleteReview removes the caller's own review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
