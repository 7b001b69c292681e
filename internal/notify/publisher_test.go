package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSSender records all SendMessage calls for verification.
type mockSQSSender struct {
	calls     []*sqs.SendMessageInput
	returnErr error
	attrErr   error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &sqs.SendMessageOutput{}, nil
}

func (m *mockSQSSender) GetQueueAttributes(_ context.Context, _ *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if m.attrErr != nil {
		return nil, m.attrErr
	}
	return &sqs.GetQueueAttributesOutput{}, nil
}

const testQueue = "https://sqs.eu-west-1.amazonaws.com/123/omc-retry"

func TestRetryPublisher_IncrementsAttempt(t *testing.T) {
	sender := &mockSQSSender{}
	pub := NewRetryPublisher(sender, testQueue, nil)
	msg := RetryMessage{Event: testEvent("002220647"), Reason: "zaken down", RequestID: "req-1"}

	require.NoError(t, pub.Publish(context.Background(), msg, 30*time.Second))
	require.Len(t, sender.calls, 1)

	sent, err := DecodeRetryMessage(aws.ToString(sender.calls[0].MessageBody))
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Attempt)
	assert.Equal(t, msg.Event, sent.Event)
	assert.Equal(t, 0, msg.Attempt, "caller's message is not mutated")
	assert.Equal(t, int32(30), sender.calls[0].DelaySeconds)
	assert.Equal(t, testQueue, aws.ToString(sender.calls[0].QueueUrl))
}

func TestRetryPublisher_ClampsDelay(t *testing.T) {
	sender := &mockSQSSender{}
	pub := NewRetryPublisher(sender, testQueue, nil)

	require.NoError(t, pub.Publish(context.Background(), RetryMessage{}, time.Hour))
	require.NoError(t, pub.Publish(context.Background(), RetryMessage{}, -time.Second))

	assert.Equal(t, int32(900), sender.calls[0].DelaySeconds)
	assert.Equal(t, int32(0), sender.calls[1].DelaySeconds)
}

func TestRetryPublisher_SendError(t *testing.T) {
	sender := &mockSQSSender{returnErr: errors.New("access denied")}
	pub := NewRetryPublisher(sender, testQueue, nil)

	err := pub.Publish(context.Background(), RetryMessage{}, 0)
	assert.ErrorContains(t, err, "access denied")
}

func TestDecodeRetryMessage_Invalid(t *testing.T) {
	_, err := DecodeRetryMessage("{not json")
	assert.Error(t, err)
}

func TestRetryPublisher_Check(t *testing.T) {
	pub := NewRetryPublisher(&mockSQSSender{}, testQueue, nil)
	assert.Equal(t, "retry_queue", pub.Name())
	assert.NoError(t, pub.Check(context.Background()))

	down := NewRetryPublisher(&mockSQSSender{attrErr: errors.New("queue does not exist")}, testQueue, nil)
	err := down.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), testQueue)
}
