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

// ProductHandler handles HTTP requests for products, their reviews and favourites.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validate *validator.Validate, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validate,
		log:      log,
	}
}

// RegisterRoutes registers the product routes. auth rejects anonymous
// callers; optional only attaches an identity when one is presented.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, optional fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", optional, h.HandleGetProducts)
	productRoutes.Get("/:id", optional, h.HandleGetProductByID)
	productRoutes.Post("/", auth, admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, admin, h.HandleDeleteProduct)

	productRoutes.Get("/:id/reviews", h.HandleGetReviews)
	productRoutes.Post("/:id/reviews", auth, h.HandleAddReview)

	productRoutes.Post("/:id/favourite", auth, h.HandleAddFavourite)
	productRoutes.Delete("/:id/favourite", auth, h.HandleRemoveFavourite)
}

// HandleGetProducts returns one page of products, optionally filtered by name.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	pageIndex, pageSize, err := paging(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	query := models.ProductQuery{
		Name:       c.Query("name"),
		SortBy:     c.Query("sortBy"),
		Descending: c.QueryBool("desc", false),
		PageIndex:  pageIndex,
		PageSize:   pageSize,
	}

	page, err := h.service.ListProducts(c.UserContext(), middleware.IdentityFrom(c), query)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToPage(page, dto.ToProductDTO))
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToProductDTO(*product))
}

// HandleCreateProduct adds a product to the catalogue.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	product := &models.Product{Name: req.Name, Description: req.Description, Price: req.Price}
	if err := h.service.CreateProduct(c.UserContext(), middleware.IdentityFrom(c), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductDTO(*product))
}

// HandleUpdateProduct edits an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	product := &models.Product{ID: c.Params("id"), Name: req.Name, Description: req.Description, Price: req.Price}
	if err := h.service.UpdateProduct(c.UserContext(), middleware.IdentityFrom(c), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToProductDTO(*product))
}

// HandleDeleteProduct removes a product with its reviews and favourites.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product " + id + " deleted successfully",
	})
}

// HandleGetReviews returns one page of a product's reviews.
func (h *ProductHandler) HandleGetReviews(c *fiber.Ctx) error {
	pageIndex, pageSize, err := paging(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	page, err := h.service.GetReviews(c.UserContext(), c.Params("id"), pageIndex, pageSize)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToPage(page, dto.ToReviewDTO))
}

// HandleAddReview stores a review of the product written by the caller.
func (h *ProductHandler) HandleAddReview(c *fiber.Ctx) error {
	var req dto.ReviewUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	review, err := h.service.AddReview(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), req.Text, req.Rating)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReviewDTO(*review))
}

// HandleAddFavourite marks the product as a favourite of the caller.
func (h *ProductHandler) HandleAddFavourite(c *fiber.Ctx) error {
	return h.setFavourite(c, true)
}

// HandleRemoveFavourite unmarks the product as a favourite of the caller.
func (h *ProductHandler) HandleRemoveFavourite(c *fiber.Ctx) error {
	return h.setFavourite(c, false)
}

func (h *ProductHandler) setFavourite(c *fiber.Ctx, favourite bool) error {
	found, err := h.service.SetFavourite(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), favourite)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
