package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	pkgkafka "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/kafka"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/logger"
)

// Kafka topics for intern domain events.
var (
	TopicInternRegistered = pkgkafka.Topic("intern", "registered")
	TopicInternLoggedIn   = pkgkafka.Topic("intern", "logged_in")
	TopicInternCreated    = pkgkafka.Topic("intern", "created")
)

// Aggregate type constant.
const AggregateTypeIntern = "intern"

// Source identifier for events originating from this service.
const SourceInternService = "intern-service"

// InternRegisteredData is the payload for an intern.registered event.
type InternRegisteredData struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ApprovalStatus string `json:"approval_status"`
}

// InternLoggedInData is the payload for an intern.logged_in event.
type InternLoggedInData struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// InternCreatedData is the payload for an intern.created event.
type InternCreatedData struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	ApprovalStatus string     `json:"approval_status"`
	Department     string     `json:"department"`
	Position       string     `json:"position"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	CreatedBy      string     `json:"created_by"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes intern domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the intern service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishInternRegistered publishes an intern.registered event.
func (p *Producer) PublishInternRegistered(ctx context.Context, intern *domain.Intern) error {
	data := InternRegisteredData{
		ID:             intern.ID,
		Username:       intern.Username,
		Email:          intern.Email,
		Role:           intern.Role.String(),
		ApprovalStatus: string(intern.ApprovalStatus),
	}
	return p.publish(ctx, TopicInternRegistered, intern.ID, data)
}

// PublishInternLoggedIn publishes an intern.logged_in event.
func (p *Producer) PublishInternLoggedIn(ctx context.Context, intern *domain.Intern, at time.Time) error {
	data := InternLoggedInData{
		ID:         intern.ID,
		Role:       intern.Role.String(),
		LoggedInAt: at.UTC(),
	}
	return p.publish(ctx, TopicInternLoggedIn, intern.ID, data)
}

// PublishInternCreated publishes an intern.created event. createdBy is the
// admin account that provisioned the intern.
func (p *Producer) PublishInternCreated(ctx context.Context, intern *domain.Intern, createdBy string) error {
	data := InternCreatedData{
		ID:             intern.ID,
		Username:       intern.Username,
		Email:          intern.Email,
		ApprovalStatus: string(intern.ApprovalStatus),
		Department:     intern.Department,
		Position:       intern.Position,
		StartDate:      intern.StartDate,
		EndDate:        intern.EndDate,
		CreatedBy:      createdBy,
	}
	return p.publish(ctx, TopicInternCreated, intern.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeIntern, SourceInternService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("intern_id", aggregateID),
	)
	return nil
}

// NopPublisher discards events. It is used when Kafka is disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }
