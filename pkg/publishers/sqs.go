package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsPublisher queues stats events on SQS. FIFO queues get the bot id as
// message group and the snapshot key as deduplication id.
type sqsPublisher struct {
	id       string
	queueURL string
	fifo     bool
	client   sqsClient
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.AWSCredentials)
	if err != nil {
		return nil, err
	}

	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     isFIFO(cfg.SQS.QueueURL),
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	input, err := s.message(evt)
	if err != nil {
		return err
	}

	out, err := s.client.SendMessage(ctx, input)
	if err != nil {
		s.log.ErrorObj("sqs stats event rejected", "publisher_sqs_error", map[string]any{
			"publisher_id": s.id,
			"stats_key":    evt.Key(),
			"error":        err.Error(),
		})
		return fmt.Errorf("send stats to sqs: %w", err)
	}
	s.log.DebugObj("sqs stats event queued", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"stats_key":    evt.Key(),
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}

func (s *sqsPublisher) message(evt Event) (*sqs.SendMessageInput, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal stats event: %w", err)
	}

	attrs := make(map[string]sqstypes.MessageAttributeValue)
	for _, a := range evt.Attributes() {
		attrs[a.Name] = sqstypes.MessageAttributeValue{
			DataType:    aws.String(awsDataType(a)),
			StringValue: aws.String(a.Value),
		}
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	}
	if s.fifo {
		group, dedupe := fifoFields(evt)
		input.MessageGroupId = aws.String(group)
		input.MessageDeduplicationId = aws.String(dedupe)
	}
	return input, nil
}
