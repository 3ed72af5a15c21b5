package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"ingreedio/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// bodyError is a malformed or invalid request body.
type bodyError struct {
	payload fiber.Map
}

func (e *bodyError) Error() string {
	return fmt.Sprint(e.payload["message"])
}

// bind parses the JSON body into out and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &bodyError{payload: fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		}}
	}

	if err := validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &bodyError{payload: fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		}}
	}
	return nil
}

// respondError maps err onto a status code and a JSON payload.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	var (
		bodyErr       *bodyError
		validationErr *repositories.ValidationError
	)
	switch {
	case errors.As(err, &bodyErr):
		return c.Status(fiber.StatusBadRequest).JSON(bodyErr.payload)
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{validationErr.Field: validationErr.Message},
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFoundMessage(err),
		})
	case errors.Is(err, repositories.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient permissions",
		})
	case errors.Is(err, repositories.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Resource already exists",
		})
	}

	log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err.Error(),
	}).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

func notFoundMessage(err error) string {
	var nf *repositories.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "Not found"
}

// paging reads the zero-based pageIndex and pageSize query parameters.
func paging(c *fiber.Ctx) (int, int, error) {
	pageIndex, err := queryInt(c, "pageIndex")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := queryInt(c, "pageSize")
	if err != nil {
		return 0, 0, err
	}
	return pageIndex, pageSize, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &bodyError{payload: fiber.Map{
			"message": fmt.Sprintf("Query parameter '%s' must be an integer", key),
		}}
	}
	return n, nil
}
