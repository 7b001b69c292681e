package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"omc/internal/types"
)

// maxSQSDelay is the largest DelaySeconds SQS accepts.
const maxSQSDelay = 900 * time.Second

// SQSSender abstracts the SQS operations the publisher uses, for
// testability. Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// RetryMessage is the body placed on the retry queue: the original event
// plus bookkeeping for the consumer.
type RetryMessage struct {
	Event     types.NotificationEvent `json:"event"`
	Attempt   int                     `json:"attempt"`
	Reason    string                  `json:"reason"`
	RequestID string                  `json:"requestId,omitempty"`
}

// RetryPublisher hands events whose processing hit an unavailable backend
// to the retry queue. Retrying is owned by the queue consumer.
type RetryPublisher struct {
	client   SQSSender
	queueURL string
	logger   types.Logger
}

// NewRetryPublisher creates a RetryPublisher targeting queueURL.
func NewRetryPublisher(client SQSSender, queueURL string, logger types.Logger) *RetryPublisher {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &RetryPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Publish increments msg.Attempt, serializes it and sends it with delay
// clamped to the SQS maximum.
func (p *RetryPublisher) Publish(ctx context.Context, msg RetryMessage, delay time.Duration) error {
	msg.Attempt++

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("retry publisher: marshal message: %w", err)
	}

	delay = min(max(delay, 0), maxSQSDelay)
	delaySec := int32(delay / time.Second)

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(p.queueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: delaySec,
	})
	if err != nil {
		return fmt.Errorf("retry publisher: send to %s: %w", p.queueURL, err)
	}

	p.logger.Info("event queued for retry",
		"event", msg.Event.String(),
		"attempt", msg.Attempt,
		"delay_seconds", delaySec,
		"request_id", msg.RequestID,
	)
	return nil
}

// Name identifies the publisher as a health probe.
func (p *RetryPublisher) Name() string { return "retry_queue" }

// Check reports whether the retry queue is reachable.
func (p *RetryPublisher) Check(ctx context.Context) error {
	_, err := p.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(p.queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return fmt.Errorf("retry queue %s: %w", p.queueURL, err)
	}
	return nil
}

// DecodeRetryMessage parses a retry queue body.
func DecodeRetryMessage(body string) (RetryMessage, error) {
	var msg RetryMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return RetryMessage{}, fmt.Errorf("decode retry message: %w", err)
	}
	return msg, nil
}
