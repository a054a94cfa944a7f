// Package notify publishes bulk run summaries to operators.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"certificate-pipeline/internal/common/config"
	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/models"
)

// SNSAPI is the subset of the SNS client used here, extracted for mocking.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes a JSON summary of each bulk run to an SNS topic so
// the organizing committee sees partial failures without reading logs.
type SNSNotifier struct {
	client   SNSAPI
	topicARN string
	log      logger.Logger
}

func NewSNSNotifier(ctx context.Context, cfg config.AWSConfig, log logger.Logger) (*SNSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return &SNSNotifier{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: cfg.SNS.TopicARN,
		log:      log,
	}, nil
}

// NewSNSNotifierWithClient is the test seam.
func NewSNSNotifierWithClient(client SNSAPI, topicARN string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN, log: log}
}

func (n *SNSNotifier) PublishBulkSummary(ctx context.Context, result *models.BulkResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal bulk summary: %w", err)
	}

	subject := fmt.Sprintf("Certificate run: %d sent, %d failed of %d", result.Sent, result.Failed, result.Total)

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("publish bulk summary: %w", err)
	}

	n.log.Info("bulk summary published", map[string]interface{}{
		"topic":  n.topicARN,
		"sent":   result.Sent,
		"failed": result.Failed,
	})
	return nil
}
