package queries

import (
	"context"
	"strconv"
	"sync"

	"omc/internal/config"
	"omc/internal/types"

	"golang.org/x/sync/singleflight"
)

// ObjectKind classifies objecten events by their object type.
type ObjectKind string

const (
	ObjectKindUnknown ObjectKind = "unknown"
	ObjectKindTask    ObjectKind = "task"
	ObjectKindMessage ObjectKind = "message"
)

// Settings are the business parameters queries depend on.
type Settings struct {
	InitiatorRole      string
	TaskObjectTypes    []string
	MessageObjectTypes []string
}

// SettingsFrom extracts Settings from the scenario configuration.
func SettingsFrom(cfg config.ScenarioConfig) Settings {
	return Settings{
		InitiatorRole:      cfg.InitiatorRole,
		TaskObjectTypes:    cfg.TaskObjectTypeUUIDs,
		MessageObjectTypes: cfg.MessageObjectTypeUUIDs,
	}
}

// ObjectKindOf classifies an event by the UUID at the end of its
// kenmerken.objectType. It performs no I/O.
func (s Settings) ObjectKindOf(event types.NotificationEvent) ObjectKind {
	if event.Channel != types.ChannelObjects {
		return ObjectKindUnknown
	}
	id, err := resourceID(event.Attributes.ObjectType)
	if err != nil {
		return ObjectKindUnknown
	}
	switch {
	case containsUUID(s.TaskObjectTypes, id.String()):
		return ObjectKindTask
	case containsUUID(s.MessageObjectTypes, id.String()):
		return ObjectKindMessage
	default:
		return ObjectKindUnknown
	}
}

func containsUUID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// Logical entities memoized by a QueryContext. Each context is bound to one
// event, so the entity name alone is the key.
const (
	keyTask             = "task"
	keyMessage          = "message"
	keyCase             = "case"
	keyCaseType         = "case_type"
	keyCaseStatuses     = "case_statuses"
	keyCaseStatus       = "case_status"
	keyStatusType       = "status_type"
	keyInitiator        = "initiator"
	keyParty            = "party"
	keyDecision         = "decision"
	keyDecisionType     = "decision_type"
	keyDecisionDocument = "decision_document"
	keyObjectType       = "object_type"
)

// QueryContext binds one notification event to the adapters and memoizes
// every lookup made on its behalf. The first call for an entity performs
// the backend round trip; later calls return the stored value. Concurrent
// callers of the same entity share one in-flight request. A failed or
// cancelled fetch stores nothing.
//
// A QueryContext is safe for concurrent use but is meant to serve a single
// request; From rebinds it and forgets everything.
type QueryContext struct {
	adapters *Adapters
	settings Settings

	mu         sync.Mutex
	event      types.NotificationEvent
	generation uint64
	memo       map[string]any
	group      singleflight.Group
}

// NewQueryContext creates an unbound QueryContext.
func NewQueryContext(adapters *Adapters, settings Settings) *QueryContext {
	return &QueryContext{
		adapters: adapters,
		settings: settings,
		memo:     make(map[string]any),
	}
}

// From binds q to event and clears the memo. In-flight fetches started for
// the previous event still complete but are not stored.
func (q *QueryContext) From(event types.NotificationEvent) *QueryContext {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.event = event
	q.generation++
	q.memo = make(map[string]any)
	return q
}

// Event returns the bound event.
func (q *QueryContext) Event() types.NotificationEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.event
}

// Settings returns the business parameters q was built with.
func (q *QueryContext) Settings() Settings {
	return q.settings
}

// IsValidType reports whether the bound event is an objecten event whose
// object type is of the given kind. It only inspects the event.
func (q *QueryContext) IsValidType(kind ObjectKind) bool {
	return q.settings.ObjectKindOf(q.Event()) == kind
}

// memoized returns the stored value for key or runs fetch once. Concurrent
// callers share one fetch, which runs detached from any single caller's
// cancellation; each caller still returns as soon as its own ctx is done.
// Only a successful fetch is stored.
func memoized[T any](ctx context.Context, q *QueryContext, key string, fetch func(context.Context, types.NotificationEvent) (T, error)) (T, error) {
	var zero T

	q.mu.Lock()
	if v, ok := q.memo[key]; ok {
		q.mu.Unlock()
		return v.(T), nil
	}
	event, gen := q.event, q.generation
	q.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	shared := context.WithoutCancel(ctx)
	ch := q.group.DoChan(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		q.mu.Lock()
		if v, ok := q.memo[key]; ok && q.generation == gen {
			q.mu.Unlock()
			return v, nil
		}
		q.mu.Unlock()

		val, err := fetch(shared, event)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		if q.generation == gen {
			q.memo[key] = val
		}
		q.mu.Unlock()
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// GetTask returns the task object the event points at.
func (q *QueryContext) GetTask(ctx context.Context) (types.TaskObject, error) {
	return memoized(ctx, q, keyTask, func(ctx context.Context, e types.NotificationEvent) (types.TaskObject, error) {
		return q.adapters.Objects.GetTask(ctx, e.MainObjectURI)
	})
}

// GetMessage returns the message object the event points at.
func (q *QueryContext) GetMessage(ctx context.Context) (types.MessageObject, error) {
	return memoized(ctx, q, keyMessage, func(ctx context.Context, e types.NotificationEvent) (types.MessageObject, error) {
		return q.adapters.Objects.GetMessage(ctx, e.MainObjectURI)
	})
}

// GetCase returns the case the event concerns. For zaken events that is the
// main object; tasks and decisions link to their case.
func (q *QueryContext) GetCase(ctx context.Context) (types.Case, error) {
	return memoized(ctx, q, keyCase, func(ctx context.Context, e types.NotificationEvent) (types.Case, error) {
		uri, err := q.caseURI(ctx, e)
		if err != nil {
			return types.Case{}, err
		}
		return q.adapters.Cases.GetCase(ctx, uri)
	})
}

func (q *QueryContext) caseURI(ctx context.Context, e types.NotificationEvent) (string, error) {
	switch e.Channel {
	case types.ChannelObjects:
		task, err := q.GetTask(ctx)
		if err != nil {
			return "", err
		}
		return task.CaseURI, requireField("taak", "zaak", task.CaseURI)
	case types.ChannelDecisions:
		decision, err := q.GetDecision(ctx)
		if err != nil {
			return "", err
		}
		return decision.CaseURI, requireField("besluit", "zaak", decision.CaseURI)
	default:
		return e.MainObjectURI, nil
	}
}

// GetCaseType returns the type of the event's case, including its status
// types.
func (q *QueryContext) GetCaseType(ctx context.Context) (types.CaseType, error) {
	return memoized(ctx, q, keyCaseType, func(ctx context.Context, _ types.NotificationEvent) (types.CaseType, error) {
		c, err := q.GetCase(ctx)
		if err != nil {
			return types.CaseType{}, err
		}
		return q.adapters.Cases.GetCaseType(ctx, c.CaseTypeURI)
	})
}

// GetCaseStatuses returns the status history of the event's case.
func (q *QueryContext) GetCaseStatuses(ctx context.Context) ([]types.CaseStatus, error) {
	return memoized(ctx, q, keyCaseStatuses, func(ctx context.Context, _ types.NotificationEvent) ([]types.CaseStatus, error) {
		c, err := q.GetCase(ctx)
		if err != nil {
			return nil, err
		}
		return q.adapters.Cases.GetCaseStatuses(ctx, c.URI)
	})
}

// GetCaseStatus returns the status resource of a zaken/status event.
func (q *QueryContext) GetCaseStatus(ctx context.Context) (types.CaseStatus, error) {
	return memoized(ctx, q, keyCaseStatus, func(ctx context.Context, e types.NotificationEvent) (types.CaseStatus, error) {
		return q.adapters.Cases.GetCaseStatus(ctx, e.ResourceURL)
	})
}

// GetStatusType returns the status type of GetCaseStatus.
func (q *QueryContext) GetStatusType(ctx context.Context) (types.StatusType, error) {
	return memoized(ctx, q, keyStatusType, func(ctx context.Context, _ types.NotificationEvent) (types.StatusType, error) {
		s, err := q.GetCaseStatus(ctx)
		if err != nil {
			return types.StatusType{}, err
		}
		return q.adapters.Cases.GetStatusType(ctx, s.StatusTypeURI)
	})
}

// GetInitiator returns the citizen data of the case's single initiator.
func (q *QueryContext) GetInitiator(ctx context.Context) (types.CitizenData, error) {
	return memoized(ctx, q, keyInitiator, func(ctx context.Context, _ types.NotificationEvent) (types.CitizenData, error) {
		c, err := q.GetCase(ctx)
		if err != nil {
			return types.CitizenData{}, err
		}
		roles, err := q.adapters.Cases.GetCaseRoles(ctx, c.URI, SubjectTypeCitizen)
		if err != nil {
			return types.CitizenData{}, err
		}
		return ResolveInitiator(roles, q.settings.InitiatorRole)
	})
}

// GetParty returns the case initiator's party record.
func (q *QueryContext) GetParty(ctx context.Context) (types.CommonPartyData, error) {
	return memoized(ctx, q, keyParty, func(ctx context.Context, _ types.NotificationEvent) (types.CommonPartyData, error) {
		initiator, err := q.GetInitiator(ctx)
		if err != nil {
			return types.CommonPartyData{}, err
		}
		if err := requireField("initiator", "inpBsn", initiator.BSN); err != nil {
			return types.CommonPartyData{}, err
		}
		return q.adapters.Parties.GetPartyByBSN(ctx, initiator.BSN)
	})
}

// GetPartyByBSN returns the party identified by bsn. It shares the party
// slot with GetParty: a context resolves at most one party.
func (q *QueryContext) GetPartyByBSN(ctx context.Context, bsn string) (types.CommonPartyData, error) {
	return memoized(ctx, q, keyParty, func(ctx context.Context, _ types.NotificationEvent) (types.CommonPartyData, error) {
		return q.adapters.Parties.GetPartyByBSN(ctx, bsn)
	})
}

// GetPartyByIdentification dispatches on the identification kind.
func (q *QueryContext) GetPartyByIdentification(ctx context.Context, id types.Identification) (types.CommonPartyData, error) {
	switch id.Type {
	case types.IdentificationBSN:
		return q.GetPartyByBSN(ctx, id.Value)
	case types.IdentificationKVK:
		return memoized(ctx, q, keyParty, func(ctx context.Context, _ types.NotificationEvent) (types.CommonPartyData, error) {
			return q.adapters.Parties.GetPartyByKVK(ctx, id.Value)
		})
	default:
		return types.CommonPartyData{}, types.NewAppErrorWithDetails(types.ErrCodeNotImplementedOperation,
			"unsupported identification type", nil, map[string]any{"type": string(id.Type)})
	}
}

// GetDecision returns the decision of a besluiten event.
func (q *QueryContext) GetDecision(ctx context.Context) (types.Decision, error) {
	return memoized(ctx, q, keyDecision, func(ctx context.Context, e types.NotificationEvent) (types.Decision, error) {
		return q.adapters.Decisions.GetDecision(ctx, e.MainObjectURI)
	})
}

// GetDecisionType returns the type of GetDecision.
func (q *QueryContext) GetDecisionType(ctx context.Context) (types.DecisionType, error) {
	return memoized(ctx, q, keyDecisionType, func(ctx context.Context, _ types.NotificationEvent) (types.DecisionType, error) {
		d, err := q.GetDecision(ctx)
		if err != nil {
			return types.DecisionType{}, err
		}
		return q.adapters.Decisions.GetDecisionType(ctx, d.DecisionTypeURI)
	})
}

// GetDecisionDocument returns the decision document a besluiten event
// announces.
func (q *QueryContext) GetDecisionDocument(ctx context.Context) (types.DecisionDocument, error) {
	return memoized(ctx, q, keyDecisionDocument, func(ctx context.Context, e types.NotificationEvent) (types.DecisionDocument, error) {
		return q.adapters.Decisions.GetDecisionDocument(ctx, e.ResourceURL)
	})
}

// GetObjectType returns the catalogue entry of the event's object type.
func (q *QueryContext) GetObjectType(ctx context.Context) (types.ObjectType, error) {
	return memoized(ctx, q, keyObjectType, func(ctx context.Context, e types.NotificationEvent) (types.ObjectType, error) {
		return q.adapters.ObjectTypes.GetObjectType(ctx, e.Attributes.ObjectType)
	})
}
