package repositories

import (
	"errors"
	"fmt"

	"ingreedio/internal/models"
)

// Sentinel error kinds. Callers match them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrDuplicate     = errors.New("duplicate record")
	ErrInvalidRating = errors.New("invalid rating")
	ErrForbidden     = errors.New("forbidden")
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports malformed input rejected before any write.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches ErrValidation as well as the specific kind, e.g. ErrInvalidRating.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.kind != nil && target == e.kind)
}

// ValidateRating rejects ratings outside [models.MinRating, models.MaxRating].
func ValidateRating(rating float64) error {
	if !models.RatingInRange(rating) {
		return &ValidationError{
			Field:   "rating",
			Message: fmt.Sprintf("the rating should be from [%g;%g]", models.MinRating, models.MaxRating),
			kind:    ErrInvalidRating,
		}
	}
	return nil
}
