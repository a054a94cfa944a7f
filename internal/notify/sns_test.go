package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/models"
)

type mockSNS struct {
	publishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.publishFunc(ctx, params, optFns...)
}

func TestPublishBulkSummary(t *testing.T) {
	var got *sns.PublishInput
	mock := &mockSNS{
		publishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			got = params
			return &sns.PublishOutput{}, nil
		},
	}

	n := NewSNSNotifierWithClient(mock, "arn:aws:sns:eu-west-1:123:certs", logger.NewNoOpLogger())
	result := &models.BulkResult{Total: 10, Sent: 8, Failed: 2}

	require.NoError(t, n.PublishBulkSummary(context.Background(), result))
	require.NotNil(t, got)

	assert.Equal(t, "arn:aws:sns:eu-west-1:123:certs", *got.TopicArn)
	assert.Equal(t, "Certificate run: 8 sent, 2 failed of 10", *got.Subject)

	var decoded models.BulkResult
	require.NoError(t, json.Unmarshal([]byte(*got.Message), &decoded))
	assert.Equal(t, 8, decoded.Sent)
}

func TestPublishBulkSummary_Error(t *testing.T) {
	mock := &mockSNS{
		publishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("topic gone")
		},
	}

	n := NewSNSNotifierWithClient(mock, "arn", logger.NewNoOpLogger())
	err := n.PublishBulkSummary(context.Background(), &models.BulkResult{})
	assert.Error(t, err)
}
