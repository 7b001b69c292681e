package external

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// StubDeliveryClient records deliveries instead of sending them. It is used
// when IS_TEST_MODE is set or APP_ENV=local, so the service boots without
// provider credentials.
type StubDeliveryClient struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []DeliveryRequest
}

// NewStubDeliveryClient creates a new StubDeliveryClient.
func NewStubDeliveryClient(logger *slog.Logger) *StubDeliveryClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubDeliveryClient{logger: logger}
}

// Deliver logs the request and returns a random notification id.
func (s *StubDeliveryClient) Deliver(ctx context.Context, req DeliveryRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sent = append(s.sent, req)
	s.mu.Unlock()

	id := uuid.NewString()
	s.logger.InfoContext(ctx, "stub: Deliver called",
		"method", req.Method,
		"template_id", req.TemplateID,
		"notification_id", id,
	)
	return id, nil
}

// Sent returns a copy of everything delivered so far.
func (s *StubDeliveryClient) Sent() []DeliveryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeliveryRequest(nil), s.sent...)
}

var _ DeliveryClient = (*StubDeliveryClient)(nil)
