package scenarios

import (
	"context"

	"omc/internal/queries"
	"omc/internal/types"
)

// NotImplemented is returned for every event shape without a strategy. It
// fails closed: assembling always reports ErrCodeNotImplementedScenario.
type NotImplemented struct{}

func (NotImplemented) Name() string { return ScenarioNotImplemented }

func (NotImplemented) DropCache() {}

func (NotImplemented) AssembleNotifications(_ context.Context, qc *queries.QueryContext) (Result, error) {
	event := qc.Event()
	return Result{Scenario: ScenarioNotImplemented}, types.NewAppErrorWithDetails(
		types.ErrCodeNotImplementedScenario,
		"no scenario handles this notification",
		nil,
		map[string]any{
			"kanaal":   string(event.Channel),
			"resource": string(event.Resource),
			"actie":    string(event.Action),
		},
	)
}

var _ Strategy = NotImplemented{}
