package scenarios

import (
	"context"
	"time"

	"omc/internal/queries"
	"omc/internal/types"
)

const (
	reasonNotATask         = "object is not a task"
	reasonNotAMessage      = "object is not a message"
	reasonTaskClosed       = "task closed"
	reasonTaskNotOpen      = "task is not open"
	reasonUnsupportedIdent = "unsupported identification type"
)

// supportedIdentification reports whether objects addressed to id can be
// delivered. Organizations (KVK) are opt-in.
func supportedIdentification(id types.Identification, allowKVK bool) bool {
	switch id.Type {
	case types.IdentificationBSN:
		return id.Value != ""
	case types.IdentificationKVK:
		return allowKVK && id.Value != ""
	default:
		return false
	}
}

func objectTypeGate(kind queries.ObjectKind, reason string) gate {
	return gate{name: "object type", check: func(_ context.Context, qc *queries.QueryContext) (string, error) {
		if !qc.IsValidType(kind) {
			return reason, nil
		}
		return "", nil
	}}
}

func dateField(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// TaskAssigned informs a citizen or organization that a task is waiting
// for them.
type TaskAssigned struct {
	opts Options
}

// NewTaskAssigned creates the strategy for a task assigned to a citizen or company.
func NewTaskAssigned(opts Options) *TaskAssigned {
	return &TaskAssigned{opts: opts}
}

func (s *TaskAssigned) Name() string { return ScenarioTaskAssigned }

func (s *TaskAssigned) DropCache() {}

func (s *TaskAssigned) AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error) {
	reason, err := runGates(ctx, qc, s.opts.Logger, []gate{
		objectTypeGate(queries.ObjectKindTask, reasonNotATask),
		{name: "task status", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			task, err := qc.GetTask(ctx)
			if err != nil {
				return "", err
			}
			switch task.Status {
			case types.TaskStatusOpen:
				return "", nil
			case types.TaskStatusClosed:
				return reasonTaskClosed, nil
			default:
				return reasonTaskNotOpen, nil
			}
		}},
		{name: "identification", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			task, err := qc.GetTask(ctx)
			if err != nil {
				return "", err
			}
			if !supportedIdentification(task.Identification, s.opts.Scenario.AllowKVKTasks) {
				return reasonUnsupportedIdent, nil
			}
			return "", nil
		}},
	})
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(ScenarioTaskAssigned, reason), nil
	}

	task, err := qc.GetTask(ctx)
	if err != nil {
		return Result{}, err
	}
	party, err := qc.GetPartyByIdentification(ctx, task.Identification)
	if err != nil {
		return Result{}, err
	}
	return finish(s.opts, ScenarioTaskAssigned, party, map[string]any{
		"taak.titel":              task.Title,
		"taak.verloopdatum":       dateField(task.Deadline),
		"taak.heeft_verloopdatum": !task.Deadline.IsZero(),
	})
}

// MessageReceived informs a citizen that a message was published in their
// portal inbox.
type MessageReceived struct {
	opts Options
}

// NewMessageReceived creates the strategy for a message placed in a citizen's inbox.
func NewMessageReceived(opts Options) *MessageReceived {
	return &MessageReceived{opts: opts}
}

func (s *MessageReceived) Name() string { return ScenarioMessageReceived }

func (s *MessageReceived) DropCache() {}

func (s *MessageReceived) AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error) {
	reason, err := runGates(ctx, qc, s.opts.Logger, []gate{
		objectTypeGate(queries.ObjectKindMessage, reasonNotAMessage),
		{name: "identification", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			msg, err := qc.GetMessage(ctx)
			if err != nil {
				return "", err
			}
			if !supportedIdentification(msg.Identification, s.opts.Scenario.AllowKVKTasks) {
				return reasonUnsupportedIdent, nil
			}
			return "", nil
		}},
	})
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(ScenarioMessageReceived, reason), nil
	}

	msg, err := qc.GetMessage(ctx)
	if err != nil {
		return Result{}, err
	}
	party, err := qc.GetPartyByIdentification(ctx, msg.Identification)
	if err != nil {
		return Result{}, err
	}
	return finish(s.opts, ScenarioMessageReceived, party, map[string]any{
		"bericht.onderwerp":       msg.Subject,
		"bericht.publicatiedatum": dateField(msg.PublishedOn),
	})
}

var (
	_ Strategy = (*TaskAssigned)(nil)
	_ Strategy = (*MessageReceived)(nil)
)
