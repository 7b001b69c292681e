package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"omc/internal/external"
	"omc/internal/types"

	"golang.org/x/time/rate"
)

// defaultOrganization keys the client of events that name no organization.
const defaultOrganization = "default"

// RateLimit bounds sends per organization.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Dispatcher sends NotifyData through per-organization delivery clients.
type Dispatcher struct {
	factory external.DeliveryClientFactory
	limit   RateLimit
	metrics Metrics
	logger  types.Logger

	mu      sync.RWMutex
	clients map[string]*orgClient
}

type orgClient struct {
	client  external.DeliveryClient
	limiter *rate.Limiter
}

// NewDispatcher creates a Dispatcher. Clients are built lazily by factory.
func NewDispatcher(factory external.DeliveryClientFactory, limit RateLimit, metrics Metrics, logger types.Logger) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Dispatcher{
		factory: factory,
		limit:   limit,
		metrics: metrics,
		logger:  logger,
		clients: make(map[string]*orgClient),
	}
}

func (d *Dispatcher) Name() string    { return external.NotifyIntegrationName }
func (d *Dispatcher) Version() string { return external.NotifyIntegrationVersion }

// clientFor returns the client of organization, creating it on first use.
// Concurrent first calls build it once.
func (d *Dispatcher) clientFor(organization string) (*orgClient, error) {
	d.mu.RLock()
	c, ok := d.clients[organization]
	d.mu.RUnlock()
	if ok {
		return c, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.clients[organization]; ok {
		return c, nil
	}
	client, err := d.factory(organization)
	if err != nil {
		return nil, err
	}
	c = &orgClient{client: client, limiter: d.newLimiter()}
	d.clients[organization] = c
	d.logger.Info("delivery client created", "organization", organization)
	return c, nil
}

func (d *Dispatcher) newLimiter() *rate.Limiter {
	if d.limit.PerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(d.limit.PerSecond), max(d.limit.Burst, 1))
}

// Send delivers one package on behalf of event. The serialized event is
// passed along as the delivery reference.
func (d *Dispatcher) Send(ctx context.Context, event types.NotificationEvent, data types.NotifyData) Outcome {
	out := Outcome{Method: data.Method}

	reference, err := event.EncodeReference()
	if err != nil {
		return d.fail(ctx, out, types.NewAppError(types.ErrCodeInternalUnexpected, "encode delivery reference", err))
	}

	organization := event.OrganizationID()
	if organization == "" {
		organization = defaultOrganization
	}
	c, err := d.clientFor(organization)
	if err != nil {
		return d.fail(ctx, out, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return d.fail(ctx, out, err)
	}

	start := time.Now()
	id, err := c.client.Deliver(ctx, external.DeliveryRequest{
		Method:          data.Method,
		Recipient:       data.ContactDetails,
		TemplateID:      data.TemplateID,
		Personalization: data.Personalization,
		Reference:       reference,
	})
	d.metrics.RecordLatency(ctx, data.Method, time.Since(start))
	if err != nil {
		return d.fail(ctx, out, err)
	}

	d.metrics.RecordDelivery(ctx, data.Method, MetricSuccess)
	out.Success = true
	out.DeliveryID = id
	return out
}

func (d *Dispatcher) fail(ctx context.Context, out Outcome, err error) Outcome {
	var appErr *types.AppError
	switch {
	case errors.As(err, &appErr):
		out.Code, out.Message = appErr.Code, appErr.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Code, out.Message = types.ErrCodeUpstreamNotify, "delivery cancelled: "+err.Error()
	default:
		out.Code, out.Message = types.ErrCodeUpstreamNotify, err.Error()
	}
	d.metrics.RecordDelivery(ctx, out.Method, MetricFailed)
	types.LoggerFromContext(ctx, d.logger).Warn("delivery failed",
		"method", string(out.Method),
		"code", string(out.Code),
		"error", err.Error(),
	)
	return out
}
