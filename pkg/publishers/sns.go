package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsPublisher announces stats events on an SNS topic, so subscribers can
// filter on the numeric stats attributes.
type snsPublisher struct {
	id       string
	topicARN string
	fifo     bool
	client   snsClient
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.AWSCredentials)
	if err != nil {
		return nil, err
	}

	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     isFIFO(cfg.SNS.TopicARN),
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal stats event: %w", err)
	}

	attrs := make(map[string]snstypes.MessageAttributeValue)
	for _, a := range evt.Attributes() {
		attrs[a.Name] = snstypes.MessageAttributeValue{
			DataType:    aws.String(awsDataType(a)),
			StringValue: aws.String(a.Value),
		}
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(body)),
		MessageAttributes: attrs,
	}
	if s.fifo {
		group, dedupe := fifoFields(evt)
		input.MessageGroupId = aws.String(group)
		input.MessageDeduplicationId = aws.String(dedupe)
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns stats event rejected", "publisher_sns_error", map[string]any{
			"publisher_id": s.id,
			"stats_key":    evt.Key(),
			"error":        err.Error(),
		})
		return fmt.Errorf("publish stats to sns: %w", err)
	}
	return nil
}
