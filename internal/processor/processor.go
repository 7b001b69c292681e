// Package processor runs one notification event end to end: validate,
// resolve the scenario, assemble packages and hand them to the dispatcher.
// Both the HTTP listener and the retry worker go through it.
package processor

import (
	"context"
	"time"

	"omc/internal/notify"
	"omc/internal/queries"
	"omc/internal/scenarios"
	"omc/internal/types"

	"golang.org/x/sync/errgroup"
)

// Retry hand-off limits.
const (
	MaxRetryAttempts = 5
	retryBaseDelay   = 30 * time.Second
	sendConcurrency  = 4
)

// Sender delivers one package. *notify.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, event types.NotificationEvent, data types.NotifyData) notify.Outcome
}

// RetryQueue accepts events for a later attempt. *notify.RetryPublisher
// implements it.
type RetryQueue interface {
	Publish(ctx context.Context, msg notify.RetryMessage, delay time.Duration) error
}

// Summary describes what processing one event did.
type Summary struct {
	Event          string           `json:"event"`
	Scenario       string           `json:"scenario,omitempty"`
	Aborted        bool             `json:"aborted"`
	Reason         string           `json:"reason,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
	Outcomes       []notify.Outcome `json:"outcomes,omitempty"`
	QueuedForRetry bool             `json:"queuedForRetry,omitempty"`
}

// Delivered counts successful outcomes.
func (s Summary) Delivered() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Processor wires the resolver, the query adapters and the dispatcher.
type Processor struct {
	adapters *queries.Adapters
	settings queries.Settings
	resolver *scenarios.Resolver
	sender   Sender
	retry    RetryQueue
	logger   types.Logger
}

// New creates a Processor. retry may be nil, which disables the hand-off.
func New(adapters *queries.Adapters, settings queries.Settings, resolver *scenarios.Resolver, sender Sender, retry RetryQueue, logger types.Logger) *Processor {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Processor{
		adapters: adapters,
		settings: settings,
		resolver: resolver,
		sender:   sender,
		retry:    retry,
		logger:   logger,
	}
}

// Process handles a freshly received event.
func (p *Processor) Process(ctx context.Context, event types.NotificationEvent) (Summary, error) {
	return p.process(ctx, event, 0)
}

// ProcessRetry handles an event taken from the retry queue.
func (p *Processor) ProcessRetry(ctx context.Context, msg notify.RetryMessage) (Summary, error) {
	return p.process(ctx, msg.Event, msg.Attempt)
}

func (p *Processor) process(ctx context.Context, event types.NotificationEvent, attempt int) (Summary, error) {
	logger := types.LoggerFromContext(ctx, p.logger).With("event", event.String())
	summary := Summary{Event: event.String()}

	warnings, err := event.Validate()
	if err != nil {
		return summary, err
	}
	summary.Warnings = warnings
	for _, w := range warnings {
		logger.Warn("notification schema drift", "warning", w)
	}

	strategy := p.resolver.Resolve(event)
	summary.Scenario = strategy.Name()
	if attempt > 0 {
		// A retry must not reuse entities fetched before the backend failed.
		strategy.DropCache()
	}

	qc := queries.NewQueryContext(p.adapters, p.settings).From(event)
	result, err := strategy.AssembleNotifications(ctx, qc)
	if err != nil {
		if types.KindOf(err) == types.KindBackendUnavailable {
			summary.QueuedForRetry = p.handOff(ctx, logger, event, attempt, err)
		}
		return summary, err
	}

	summary.Scenario = result.Scenario
	if result.Aborted {
		summary.Aborted, summary.Reason = true, result.Reason
		logger.Info("notification aborted", "scenario", result.Scenario, "reason", result.Reason)
		return summary, nil
	}

	summary.Outcomes = p.sendAll(ctx, event, result.Notifications)
	logger.Info("notification processed",
		"scenario", result.Scenario,
		"packages", len(result.Notifications),
		"delivered", summary.Delivered(),
	)
	return summary, nil
}

// sendAll delivers every package; outcomes keep the package order.
func (p *Processor) sendAll(ctx context.Context, event types.NotificationEvent, packages []types.NotifyData) []notify.Outcome {
	outcomes := make([]notify.Outcome, len(packages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sendConcurrency)
	for i, data := range packages {
		g.Go(func() error {
			outcomes[i] = p.sender.Send(gctx, event, data)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// handOff queues event for another attempt and reports whether it did.
func (p *Processor) handOff(ctx context.Context, logger types.Logger, event types.NotificationEvent, attempt int, cause error) bool {
	if p.retry == nil {
		return false
	}
	if attempt >= MaxRetryAttempts {
		logger.Error("retry attempts exhausted", "attempt", attempt, "error", cause.Error())
		return false
	}
	msg := notify.RetryMessage{
		Event:     event,
		Attempt:   attempt,
		Reason:    cause.Error(),
		RequestID: types.GetRequestID(ctx),
	}
	if err := p.retry.Publish(ctx, msg, RetryDelay(attempt)); err != nil {
		logger.Error("retry hand-off failed", "error", err.Error())
		return false
	}
	return true
}

// RetryDelay is the queue delay before attempt+1: 30s doubling per attempt.
func RetryDelay(attempt int) time.Duration {
	return retryBaseDelay << min(max(attempt, 0), 5)
}
