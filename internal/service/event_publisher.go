package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/pkg/kafka"
)

// EventPublisher defines the interface for publishing pool events
type EventPublisher interface {
	// PublishTicketsPurchased publishes a purchase event
	PublishTicketsPurchased(ctx context.Context, customerID string, tickets []*domain.Ticket) error

	// PublishTicketsReleased publishes a release event
	PublishTicketsReleased(ctx context.Context, vendorID, eventName string, count int) error

	// PublishVendorDeactivated publishes a vendor deactivation event
	PublishVendorDeactivated(ctx context.Context, vendorID string) error

	// PublishEventConfigured publishes a configuration change event
	PublishEventConfigured(ctx context.Context, cfg *domain.EventConfiguration) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticket-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticketline"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticketline-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishTicketsPurchased publishes a purchase event
func (p *KafkaEventPublisher) PublishTicketsPurchased(ctx context.Context, customerID string, tickets []*domain.Ticket) error {
	event := &domain.TicketEvent{
		EventType:  domain.TicketEventPurchased,
		CustomerID: customerID,
		Count:      len(tickets),
		Tickets:    tickets,
	}
	if len(tickets) > 0 {
		event.EventName = tickets[0].EventName
	}
	return p.publishEvent(ctx, event)
}

// PublishTicketsReleased publishes a release event
func (p *KafkaEventPublisher) PublishTicketsReleased(ctx context.Context, vendorID, eventName string, count int) error {
	return p.publishEvent(ctx, &domain.TicketEvent{
		EventType: domain.TicketEventReleased,
		EventName: eventName,
		VendorID:  vendorID,
		Count:     count,
	})
}

// PublishVendorDeactivated publishes a vendor deactivation event
func (p *KafkaEventPublisher) PublishVendorDeactivated(ctx context.Context, vendorID string) error {
	return p.publishEvent(ctx, &domain.TicketEvent{
		EventType: domain.TicketEventVendorDeactivated,
		VendorID:  vendorID,
	})
}

// PublishEventConfigured publishes a configuration change event
func (p *KafkaEventPublisher) PublishEventConfigured(ctx context.Context, cfg *domain.EventConfiguration) error {
	return p.publishEvent(ctx, &domain.TicketEvent{
		EventType: domain.TicketEventEventConfigured,
		EventName: cfg.EventName,
	})
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, event *domain.TicketEvent) error {
	event.EventID = uuid.New().String()
	event.OccurredAt = time.Now().UTC()

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.EventType),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: event.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher, used
// when no broker is reachable and in tests
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishTicketsPurchased is a no-op
func (p *NoOpEventPublisher) PublishTicketsPurchased(ctx context.Context, customerID string, tickets []*domain.Ticket) error {
	return nil
}

// PublishTicketsReleased is a no-op
func (p *NoOpEventPublisher) PublishTicketsReleased(ctx context.Context, vendorID, eventName string, count int) error {
	return nil
}

// PublishVendorDeactivated is a no-op
func (p *NoOpEventPublisher) PublishVendorDeactivated(ctx context.Context, vendorID string) error {
	return nil
}

// PublishEventConfigured is a no-op
func (p *NoOpEventPublisher) PublishEventConfigured(ctx context.Context, cfg *domain.EventConfiguration) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
