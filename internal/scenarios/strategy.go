// Package scenarios decides what a notification event should produce.
//
// A Resolver maps the routing attributes of an event to one Strategy. A
// Strategy runs its gates in declaration order against a bound
// queries.QueryContext; the first failing gate aborts the pipeline with a
// reason, which is a normal outcome and not an error. When every gate holds
// the strategy assembles one NotifyData per usable delivery method.
package scenarios

import (
	"context"

	"omc/internal/config"
	"omc/internal/queries"
	"omc/internal/types"
)

// Scenario names double as the first level of the template mapping.
const (
	ScenarioCaseCreated       = "case_created"
	ScenarioCaseStatusChanged = "case_status_changed"
	ScenarioCaseStatusUpdated = "case_status_updated"
	ScenarioCaseClosed        = "case_closed"
	ScenarioTaskAssigned      = "task_assigned"
	ScenarioMessageReceived   = "message_received"
	ScenarioDecisionMade      = "decision_made"
	ScenarioNotImplemented    = "not_implemented"
)

// Stage is the last pipeline state a strategy reached.
type Stage string

const (
	StageAborted Stage = "aborted"
	StageDone    Stage = "done"
)

// Result is the outcome of AssembleNotifications. Exactly one of Aborted
// (with Reason) or Notifications describes what happened.
type Result struct {
	Scenario      string             `json:"scenario"`
	Stage         Stage              `json:"stage"`
	Aborted       bool               `json:"aborted"`
	Reason        string             `json:"reason,omitempty"`
	Notifications []types.NotifyData `json:"notifications,omitempty"`
}

// Strategy handles one event shape.
type Strategy interface {
	Name() string
	// AssembleNotifications runs the gates and builds the outbound packages.
	// A failing gate yields an aborted Result and a nil error. Errors carry a
	// types.ErrorKind (backend unavailable, malformed, unimplemented).
	AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error)
	// DropCache forgets entities the strategy holds between calls so a retry
	// refetches them.
	DropCache()
}

// Options are the process-wide inputs every strategy shares.
type Options struct {
	Templates Templates
	Scenario  config.ScenarioConfig
	Logger    types.Logger
}

// gate checks one precondition. An empty reason means the gate holds.
type gate struct {
	name  string
	check func(ctx context.Context, qc *queries.QueryContext) (reason string, err error)
}

// runGates evaluates gates strictly in order and stops at the first one
// that fails or errors.
func runGates(ctx context.Context, qc *queries.QueryContext, logger types.Logger, gates []gate) (string, error) {
	if logger == nil {
		logger = types.NopLogger{}
	}
	for _, g := range gates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		reason, err := g.check(ctx, qc)
		if err != nil {
			return "", err
		}
		if reason != "" {
			logger.Info("scenario aborted", "gate", g.name, "reason", reason, "event", qc.Event().String())
			return reason, nil
		}
	}
	return "", nil
}

func aborted(scenario, reason string) Result {
	return Result{Scenario: scenario, Stage: StageAborted, Aborted: true, Reason: reason}
}

func done(scenario string, notifications []types.NotifyData) Result {
	return Result{Scenario: scenario, Stage: StageDone, Notifications: notifications}
}

// whitelisted reports whether any candidate is allowed by list. A "*"
// entry allows everything; an empty list allows nothing.
func whitelisted(list []string, candidates ...string) bool {
	for _, allowed := range list {
		if allowed == "*" {
			return true
		}
		for _, c := range candidates {
			if c != "" && c == allowed {
				return true
			}
		}
	}
	return false
}
