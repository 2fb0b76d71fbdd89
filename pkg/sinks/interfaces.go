package sinks

import "context"

// Sink sends events to a downstream destination (SQS, SNS, Pub/Sub, HTTP).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
