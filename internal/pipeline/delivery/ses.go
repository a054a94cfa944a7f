package delivery

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
)

// SESAPI is the subset of the SES client used here, extracted for mocking.
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESTransport delivers through Amazon SES using raw messages so the PDF
// attachment survives intact.
type SESTransport struct {
	client SESAPI
	from   string
	log    logger.Logger
}

func NewSESTransport(ctx context.Context, cfg config.AWSConfig, log logger.Logger) (*SESTransport, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return &SESTransport{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.SES.FromAddress,
		log:    log,
	}, nil
}

// NewSESTransportWithClient is the test seam.
func NewSESTransportWithClient(client SESAPI, from string, log logger.Logger) *SESTransport {
	return &SESTransport{client: client, from: from, log: log}
}

func (t *SESTransport) Send(ctx context.Context, msg *Message) error {
	if msg.From == "" {
		msg.From = t.from
	}

	_, err := t.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.From),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: msg.Encode()},
	})
	if err != nil {
		return apperrors.NewDeliverySendFailedError(err)
	}

	t.log.Info("certificate email sent via ses", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
