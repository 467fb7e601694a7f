package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNS caps subjects at 100 characters.
const maxSubjectLen = 100

// snsAPI is the subset of *sns.Client the publisher calls.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher sends each event to one SNS topic with the payload as the
// message body and the action as a message attribute.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
	logger   *slog.Logger
}

func NewSNSPublisher(cfg aws.Config, topicARN string, logger *slog.Logger) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN, logger: logger}
}

func (p *SNSPublisher) Name() string { return "sns" }

func (p *SNSPublisher) Publish(ctx context.Context, event Event, message []byte) error {
	subject := event.Subject
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(message)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"action": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Action)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	p.logger.DebugContext(ctx, "sns message published", slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
