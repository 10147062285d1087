package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jajuok/agripro-sub000/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier is the outcome notification collaborator the orchestrator talks
// to. The RabbitMQ publisher is the production implementation.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, assessment *models.Assessment) error
}

// NotificationPublisher publishes assessment status-change events to RabbitMQ
type NotificationPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewNotificationPublisher creates a new notification event publisher
func NewNotificationPublisher(conn *RabbitMQConnection) *NotificationPublisher {
	return &NotificationPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// NotifyStatusChange publishes the status-keyed outcome message for an
// assessment to the push_noti_events queue.
func (p *NotificationPublisher) NotifyStatusChange(ctx context.Context, assessment *models.Assessment) error {
	title, message := MessageForStatus(assessment.Status)
	return p.publish(ctx, StatusChangeEvent{
		FarmerID:     assessment.FarmerID,
		AssessmentID: assessment.ID.String(),
		Type:         EventTypeStatusChange,
		Title:        title,
		Message:      message,
	})
}

func (p *NotificationPublisher) publish(ctx context.Context, event StatusChangeEvent) error {
	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		StatusChangeQueue, // queue name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                // exchange
		StatusChangeQueue, // routing key (queue name)
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Notification event published",
		"queue", StatusChangeQueue,
		"farmer_id", event.FarmerID,
		"assessment_id", event.AssessmentID,
		"title", event.Title,
	)

	return nil
}

// PublisherHealthStatus represents the health status of the publisher
type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}

// HealthCheck returns the health status of the publisher
func (p *NotificationPublisher) HealthCheck() PublisherHealthStatus {
	isHealthy := p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()

	return PublisherHealthStatus{
		IsHealthy:         isHealthy,
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             StatusChangeQueue,
	}
}
