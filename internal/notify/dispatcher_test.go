package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"omc/internal/external"
	"omc/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu   sync.Mutex
	reqs []external.DeliveryRequest
	err  error
}

func (c *recordingClient) Deliver(_ context.Context, req external.DeliveryRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return "", c.err
	}
	return "delivery-1", nil
}

type recordingMetrics struct {
	mu        sync.Mutex
	results   []MetricResult
	latencies int
}

func (m *recordingMetrics) RecordDelivery(_ context.Context, _ types.NotifyMethod, r MetricResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

func (m *recordingMetrics) RecordLatency(context.Context, types.NotifyMethod, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func testEvent(org string) types.NotificationEvent {
	return types.NotificationEvent{
		Action:        types.ActionCreate,
		Channel:       types.ChannelCases,
		Resource:      types.ResourceCase,
		MainObjectURI: "https://zaken.example.nl/zaken/api/v1/zaken/a7d1c9e0-2b6f-4d0e-9a2f-1c3e5b7d9f00",
		ResourceURL:   "https://zaken.example.nl/zaken/api/v1/zaken/a7d1c9e0-2b6f-4d0e-9a2f-1c3e5b7d9f00",
		CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Attributes:    types.EventAttributes{SourceOrganization: org, CaseType: "https://zaken.example.nl/catalogi/api/v1/zaaktypen/1"},
	}
}

func emailPackage() types.NotifyData {
	return types.NotifyData{
		Method:          types.MethodEmail,
		ContactDetails:  "jan@example.nl",
		TemplateID:      "tpl-1",
		Personalization: map[string]any{"klant.voornaam": "Jan"},
	}
}

func TestDispatcher_ConcurrentFirstUseBuildsOneClient(t *testing.T) {
	const callers = 64
	var built atomic.Int32
	client := &recordingClient{}
	factory := func(string) (external.DeliveryClient, error) {
		built.Add(1)
		time.Sleep(5 * time.Millisecond)
		return client, nil
	}
	d := NewDispatcher(factory, RateLimit{}, nil, nil)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			out := d.Send(context.Background(), testEvent("002220647"), emailPackage())
			assert.True(t, out.Success)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	assert.Len(t, client.reqs, callers)
}

func TestDispatcher_OneClientPerOrganization(t *testing.T) {
	var orgs []string
	factory := func(org string) (external.DeliveryClient, error) {
		orgs = append(orgs, org)
		return &recordingClient{}, nil
	}
	d := NewDispatcher(factory, RateLimit{}, nil, nil)
	ctx := context.Background()

	d.Send(ctx, testEvent("A"), emailPackage())
	d.Send(ctx, testEvent("B"), emailPackage())
	d.Send(ctx, testEvent("A"), emailPackage())
	d.Send(ctx, testEvent(""), emailPackage())

	assert.Equal(t, []string{"A", "B", defaultOrganization}, orgs)
}

func TestDispatcher_ReferenceRoundTrips(t *testing.T) {
	client := &recordingClient{}
	d := NewDispatcher(func(string) (external.DeliveryClient, error) { return client, nil }, RateLimit{}, nil, nil)
	event := testEvent("002220647")

	out := d.Send(context.Background(), event, emailPackage())
	require.True(t, out.Success)
	assert.Equal(t, "delivery-1", out.DeliveryID)

	require.Len(t, client.reqs, 1)
	req := client.reqs[0]
	assert.Equal(t, "jan@example.nl", req.Recipient)
	assert.Equal(t, "tpl-1", req.TemplateID)

	decoded, err := types.DecodeReference(req.Reference)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDispatcher_TranslatesFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode types.ErrorCode
	}{
		{"app error", types.NewAppError(types.ErrCodeUpstreamNotifyRejected, "bad template", nil), types.ErrCodeUpstreamNotifyRejected},
		{"plain error", errors.New("connection reset"), types.ErrCodeUpstreamNotify},
		{"cancelled", context.Canceled, types.ErrCodeUpstreamNotify},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordingMetrics{}
			client := &recordingClient{err: tt.err}
			d := NewDispatcher(func(string) (external.DeliveryClient, error) { return client, nil }, RateLimit{}, metrics, nil)

			out := d.Send(context.Background(), testEvent("X"), emailPackage())
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantCode, out.Code)
			assert.NotEmpty(t, out.Message)
			assert.Equal(t, types.MethodEmail, out.Method)
			assert.Equal(t, []MetricResult{MetricFailed}, metrics.results)
			assert.Equal(t, 1, metrics.latencies)
		})
	}
}

func TestDispatcher_FactoryErrorIsNotCached(t *testing.T) {
	calls := 0
	factory := func(string) (external.DeliveryClient, error) {
		calls++
		if calls == 1 {
			return nil, types.NewAppError(types.ErrCodeInternalConfig, "invalid Notify API key", nil)
		}
		return &recordingClient{}, nil
	}
	d := NewDispatcher(factory, RateLimit{}, nil, nil)

	out := d.Send(context.Background(), testEvent("X"), emailPackage())
	assert.False(t, out.Success)
	assert.Equal(t, types.ErrCodeInternalConfig, out.Code)

	out = d.Send(context.Background(), testEvent("X"), emailPackage())
	assert.True(t, out.Success)
	assert.Equal(t, 2, calls)
}

func TestDispatcher_RateLimitHonoursContext(t *testing.T) {
	client := &recordingClient{}
	d := NewDispatcher(func(string) (external.DeliveryClient, error) { return client, nil },
		RateLimit{PerSecond: 0.001, Burst: 1}, nil, nil)

	require.True(t, d.Send(context.Background(), testEvent("X"), emailPackage()).Success)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := d.Send(ctx, testEvent("X"), emailPackage())
	assert.False(t, out.Success)
	assert.Len(t, client.reqs, 1)
}

func TestDispatcher_Identity(t *testing.T) {
	d := NewDispatcher(nil, RateLimit{}, nil, nil)
	assert.Equal(t, "NotifyNL", d.Name())
	assert.NotEmpty(t, d.Version())
}
