package config

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
)

// InventoryEvent is the wire shape published after an inventory-mutating
// operation commits. Downstream consumers (reporting, alerting) treat it
// as a notification, not a source of truth; the transaction tables are.
type InventoryEvent struct {
	OrgId         string    `json:"org_id"`
	EventType     string    `json:"event_type"` // build_product, purchase, loss, adjustment, sale
	EntityId      string    `json:"entity_id"`  // part or product id
	TxnId         string    `json:"txn_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationId string    `json:"correlation_id"`
}

// EventPublisher publishes inventory events to a Pub/Sub topic.
// A nil publisher is valid and drops events.
type EventPublisher struct {
	topic *pubsub.Topic
}

// NewEventPublisher returns nil unless PUBSUB_PROJECT_ID and
// INVENTORY_EVENTS_TOPIC are both set. Publishing is strictly
// best-effort and happens only after the DB transaction commits.
func NewEventPublisher(ctx context.Context) *EventPublisher {
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	topicID := os.Getenv("INVENTORY_EVENTS_TOPIC")
	if projectID == "" || topicID == "" {
		return nil
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Printf("pubsub client init failed (%v); inventory events disabled", err)
		return nil
	}
	return &EventPublisher{topic: client.Topic(topicID)}
}

func (p *EventPublisher) Publish(ctx context.Context, event InventoryEvent) {
	if p == nil || p.topic == nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	// Fire and forget: the result is resolved in the background, and a
	// failed publish must never fail the request that already committed.
	p.topic.Publish(ctx, &pubsub.Message{Data: raw})
}
