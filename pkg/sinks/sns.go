package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient defines the minimal subset of the SNS client used by snsSink.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsSink implements the Sink interface for AWS SNS.
type snsSink struct {
	id       string
	typ      string
	topicARN string
	client   snsClient
	log      Logger
}

// newSNSSink creates a new SNS sink with the given configuration.
func newSNSSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("sink %q missing sns configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.SNS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &snsSink{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsSink) ID() string   { return s.id }
func (s *snsSink) Type() string { return s.typ }

// Publish sends the event to the configured SNS topic.
func (s *snsSink) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"category_name": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.CategoryName),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns sink publish failed", "sink_sns_error", map[string]any{
			"sink_id": s.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns sink delivered event", "sink_sns_delivery", map[string]any{
		"sink_id": s.id,
	})
	return nil
}
