// Package notify hands assembled packages to the delivery provider. It owns
// the only state shared across requests: one delivery client and one rate
// limiter per organization, created on first use.
package notify

import (
	"context"
	"time"

	"omc/internal/types"
)

// Outcome is the typed result of one delivery attempt. Provider failures
// never escape as raw errors.
type Outcome struct {
	Success    bool               `json:"success"`
	Method     types.NotifyMethod `json:"method"`
	DeliveryID string             `json:"deliveryId,omitempty"`
	Code       types.ErrorCode    `json:"code,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// MetricResult categorizes a delivery outcome for metrics reporting.
type MetricResult string

const (
	MetricSuccess MetricResult = "success"
	MetricFailed  MetricResult = "failed"
)

// Metrics records delivery telemetry.
type Metrics interface {
	RecordDelivery(ctx context.Context, method types.NotifyMethod, result MetricResult)
	RecordLatency(ctx context.Context, method types.NotifyMethod, duration time.Duration)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RecordDelivery(context.Context, types.NotifyMethod, MetricResult) {}
func (NopMetrics) RecordLatency(context.Context, types.NotifyMethod, time.Duration) {}
