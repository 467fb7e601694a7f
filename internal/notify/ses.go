package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesAPI is the subset of *ses.Client the publisher calls.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESPublisher mails a plain-text copy of each event to an operations inbox.
type SESPublisher struct {
	client sesAPI
	from   string
	to     string
	logger *slog.Logger
}

func NewSESPublisher(cfg aws.Config, from, to string, logger *slog.Logger) *SESPublisher {
	return &SESPublisher{client: ses.NewFromConfig(cfg), from: from, to: to, logger: logger}
}

func (p *SESPublisher) Name() string { return "ses" }

func (p *SESPublisher) Publish(ctx context.Context, event Event, message []byte) error {
	body := fmt.Sprintf("%s\n\naction: %s\nuser_id: %s\noccurred_at: %s\n\n%s\n",
		event.Subject,
		event.Action,
		event.UserID,
		event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		message,
	)

	out, err := p.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(p.from),
		Destination: &types.Destination{
			ToAddresses: []string{p.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(event.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	p.logger.DebugContext(ctx, "notification email sent", slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
