package services

import (
	"context"
	"fmt"
	"time"

	"ingreedio/internal/models"
	"ingreedio/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ReviewService handles business logic related to reviews and their moderation.
type ReviewService struct {
	repo      repositories.ReviewRepository
	publisher EventPublisher // Optional; nil disables events
	log       logrus.FieldLogger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo repositories.ReviewRepository, publisher EventPublisher, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ListReviews returns every review, or one author's reviews. Moderator only.
func (s *ReviewService) ListReviews(ctx context.Context, caller *models.Identity, userID string) ([]models.Review, error) {
	if !caller.HasRole(models.RoleModerator) {
		return nil, fmt.Errorf("listing reviews: %w", repositories.ErrForbidden)
	}
	return s.repo.GetAll(ctx, userID)
}

// GetForProduct returns every review of a product.
func (s *ReviewService) GetForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	return s.repo.GetForProduct(ctx, productID)
}

// CreateReview stores a review written by the caller.
func (s *ReviewService) CreateReview(ctx context.Context, caller *models.Identity, productID, text string, rating float64) (*models.Review, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("creating reviews: %w", repositories.ErrForbidden)
	}
	review := &models.Review{
		Text:      text,
		Rating:    rating,
		ProductID: productID,
		UserID:    caller.UserID,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Report increments the report counter and notifies moderation. A failed
// notification is logged and does not fail the report.
func (s *ReviewService) Report(ctx context.Context, reviewID string) (*models.Review, error) {
	review, err := s.repo.Report(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if s.publisher == nil {
		s.log.WithField("review_id", review.ID).Debug("event publisher disabled, skipping review.reported")
		return review, nil
	}
	event := ReviewReportedEvent{
		ReviewID:     review.ID,
		ProductID:    review.ProductID,
		AuthorID:     review.UserID,
		ReportsCount: review.ReportsCount,
		ReportedAt:   time.Now().UTC(),
	}
	if err := s.publisher.Publish(EventReviewReported, event); err != nil {
		s.log.WithFields(logrus.Fields{"review_id": review.ID, "error": err.Error()}).Warn("failed to publish review.reported")
	}
	return review, nil
}

// Rate overwrites the rating of a review.
func (s *ReviewService) Rate(ctx context.Context, reviewID string, rating float64) (*models.Review, error) {
	return s.repo.Rate(ctx, reviewID, rating)
}

// Update replaces the text and rating of the caller's own review.
func (s *ReviewService) Update(ctx context.Context, caller *models.Identity, reviewID, text string, rating float64) (*models.Review, error) {
	if err := repositories.ValidateRating(rating); err != nil {
		return nil, err
	}
	if err := s.ensureAuthor(ctx, caller, reviewID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, reviewID, text, rating)
}

// ResetReports clears the report counter. Moderator only.
func (s *ReviewService) ResetReports(ctx context.Context, caller *models.Identity, reviewID string) (*models.Review, error) {
	if !caller.HasRole(models.RoleModerator) {
		return nil, fmt.Errorf("resetting reports: %w", repositories.ErrForbidden)
	}
	review, err := s.repo.ResetReports(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"review_id": reviewID, "moderator_id": caller.UserID}).Info("review reports reset")
	return review, nil
}

// Delete removes the caller's own review.
func (s *ReviewService) Delete(ctx context.Context, caller *models.Identity, reviewID string) error {
	if !caller.Authenticated() {
		return fmt.Errorf("deleting reviews: %w", repositories.ErrForbidden)
	}
	return s.repo.Delete(ctx, reviewID, caller.UserID)
}

func (s *ReviewService) ensureAuthor(ctx context.Context, caller *models.Identity, reviewID string) error {
	if !caller.Authenticated() {
		return fmt.Errorf("editing reviews: %w", repositories.ErrForbidden)
	}
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != caller.UserID {
		return fmt.Errorf("review %s belongs to another user: %w", reviewID, repositories.ErrForbidden)
	}
	return nil
}
