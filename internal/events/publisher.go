package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const eventSource = "omr-service"

// Publisher broadcasts notifications to school-scoped topics. Delivery is
// fire-and-forget: a failed publish never affects stored grading.
type Publisher interface {
	PublishSchoolEvent(ctx context.Context, schoolID uint, name EventName, data interface{}) error
	Close() error
}

// KafkaPublisher implements Publisher using Watermill with Kafka.
type KafkaPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	Logger       *slog.Logger
}

// NewKafkaPublisher creates a Kafka-based publisher via Watermill.
func NewKafkaPublisher(config PublisherConfig) (*KafkaPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaPublisher{
		publisher: publisher,
		logger:    config.Logger,
	}, nil
}

// topicForSchool maps the logical school scope to a wire topic. Kafka topic
// names cannot contain ':', so the scope separator is a dot.
func topicForSchool(schoolID uint) string {
	return fmt.Sprintf("school.%d", schoolID)
}

func (p *KafkaPublisher) PublishSchoolEvent(ctx context.Context, schoolID uint, name EventName, data interface{}) error {
	event := &SchoolEvent{
		ID:        uuid.NewString(),
		Name:      name,
		SchoolID:  schoolID,
		Timestamp: time.Now(),
		Source:    eventSource,
		Data:      data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal school event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_name", string(event.Name))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	topic := topicForSchool(schoolID)
	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish school event",
			"event_id", event.ID,
			"event_name", event.Name,
			"topic", topic,
			"error", err)
		return fmt.Errorf("failed to publish school event: %w", err)
	}

	p.logger.Info("Published school event",
		"event_id", event.ID,
		"event_name", event.Name,
		"topic", topic)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	Events []SchoolEvent
	Logger *slog.Logger
}

func NewMockPublisher(logger *slog.Logger) *MockPublisher {
	return &MockPublisher{
		Events: make([]SchoolEvent, 0),
		Logger: logger,
	}
}

func (m *MockPublisher) PublishSchoolEvent(ctx context.Context, schoolID uint, name EventName, data interface{}) error {
	m.Events = append(m.Events, SchoolEvent{
		ID:        uuid.NewString(),
		Name:      name,
		SchoolID:  schoolID,
		Timestamp: time.Now(),
		Source:    eventSource,
		Data:      data,
	})
	if m.Logger != nil {
		m.Logger.Info("Mock: published school event", "event_name", name, "school_id", schoolID)
	}
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// PublishedEvents returns all recorded events.
func (m *MockPublisher) PublishedEvents() []SchoolEvent {
	return m.Events
}

// ClearEvents drops all recorded events.
func (m *MockPublisher) ClearEvents() {
	m.Events = m.Events[:0]
}
