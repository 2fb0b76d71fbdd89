package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// pubsubSink implements the Sink interface for GCP Pub/Sub.
type pubsubSink struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newPubSubSink creates a new Pub/Sub sink with the given configuration.
func newPubSubSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing pubsub configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubSink{
		id:     cfg.ID,
		typ:    TypePubSub,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubSink) ID() string   { return p.id }
func (p *pubsubSink) Type() string { return p.typ }

// Publish sends the event to the configured Pub/Sub topic and waits for the
// server acknowledgment.
func (p *pubsubSink) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"category_name": evt.CategoryName,
		},
	})

	if _, err := result.Get(ctx); err != nil {
		p.log.ErrorObj("pubsub sink publish failed", "sink_pubsub_error", map[string]any{
			"sink_id": p.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub sink delivered event", "sink_pubsub_delivery", map[string]any{
		"sink_id": p.id,
	})
	return nil
}

// Close stops the topic publisher and closes the underlying client.
func (p *pubsubSink) Close() error {
	if p == nil {
		return nil
	}
	if p.topic != nil {
		p.topic.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
