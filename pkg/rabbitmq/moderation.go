package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ReviewReported mirrors the payload of a review.reported event.
type ReviewReported struct {
	ReviewID     string    `json:"review_id"`
	ProductID    string    `json:"product_id"`
	AuthorID     string    `json:"author_id"`
	ReportsCount int       `json:"reports_count"`
	ReportedAt   time.Time `json:"reported_at"`
}

// ModerationHandler returns a consumer for review events. Reviews whose report
// count reaches threshold are logged as flagged for moderator attention.
func ModerationHandler(threshold int, log logrus.FieldLogger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event ReviewReported
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if event.ReviewID == "" {
			return fmt.Errorf("%w: missing review_id", ErrMalformedMessage)
		}

		entry := log.WithFields(logrus.Fields{
			"review_id":     event.ReviewID,
			"product_id":    event.ProductID,
			"reports_count": event.ReportsCount,
		})
		if event.ReportsCount >= threshold {
			entry.Warn("review flagged for moderation")
			return nil
		}
		entry.Info("review reported")
		return nil
	}
}
