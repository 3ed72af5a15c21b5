package services

import "time"

// Routing keys for domain events.
const (
	EventReviewReported = "review.reported"
)

// EventPublisher sends domain events to interested consumers.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// ReviewReportedEvent is published whenever a review is reported.
type ReviewReportedEvent struct {
	ReviewID     string    `json:"review_id"`
	ProductID    string    `json:"product_id"`
	AuthorID     string    `json:"author_id"`
	ReportsCount int       `json:"reports_count"`
	ReportedAt   time.Time `json:"reported_at"`
}
