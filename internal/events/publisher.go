package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event subjects
const (
	SubjectProductCreated = "product.created"
	SubjectProductUpdated = "product.updated"
	SubjectProductDeleted = "product.deleted"
)

// ProductEvent is the audit-trail payload emitted on product writes.
type ProductEvent struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Price       string    `json:"price"`
	CategoryID  string    `json:"categoryId"`
	ImageCount  int       `json:"imageCount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher emits product audit events over NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS at the given URL.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("catalog-admin-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "product-events"),
	}, nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.publish(buildProductEvent(SubjectProductCreated, product))
}

// PublishProductUpdated publishes a product.updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product) {
	p.publish(buildProductEvent(SubjectProductUpdated, product))
}

// PublishProductDeleted publishes a product.deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, product *models.Product) {
	p.publish(buildProductEvent(SubjectProductDeleted, product))
}

func buildProductEvent(eventType string, product *models.Product) *ProductEvent {
	return &ProductEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		ProductID:   product.ID.String(),
		ProductName: product.Name,
		Price:       product.Price,
		CategoryID:  product.CategoryID.String(),
		ImageCount:  len(product.Images),
		OccurredAt:  time.Now().UTC(),
	}
}

// publish runs asynchronously so the write path never blocks on the broker.
func (p *Publisher) publish(event *ProductEvent) {
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal product event")
			return
		}

		if err := p.conn.Publish(event.EventType, data); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productId": event.ProductID,
			}).WithError(err).Error("Failed to publish product event")
			return
		}

		p.logger.WithFields(logrus.Fields{
			"eventType": event.EventType,
			"productId": event.ProductID,
		}).Debug("Product event published")
	}()
}
