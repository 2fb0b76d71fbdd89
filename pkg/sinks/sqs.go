package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient defines the minimal subset of the SQS client used by sqsSink.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsSink implements the Sink interface for AWS SQS.
type sqsSink struct {
	id       string
	typ      string
	queueURL string
	client   sqsClient
	log      Logger
}

// newSQSSink creates a new SQS sink with the given configuration.
func newSQSSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("sink %q missing sqs configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.SQS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &sqsSink{
		id:       cfg.ID,
		typ:      TypeSQS,
		queueURL: cfg.SQS.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsSink) ID() string   { return s.id }
func (s *sqsSink) Type() string { return s.typ }

// Publish sends the event to the configured SQS queue.
func (s *sqsSink) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"category_name": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.CategoryName),
			},
		},
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		s.log.ErrorObj("sqs sink send failed", "sink_sqs_error", map[string]any{
			"sink_id": s.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs sink delivered event", "sink_sqs_delivery", map[string]any{
		"sink_id": s.id,
	})
	return nil
}
