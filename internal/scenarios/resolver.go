package scenarios

import (
	"omc/internal/queries"
	"omc/internal/types"
)

type routeKey struct {
	channel  types.Channel
	resource types.Resource
	action   types.Action
	kind     queries.ObjectKind
}

// Resolver selects the strategy for an event. Resolution is a table lookup
// without I/O; objecten events are further split by their object type.
type Resolver struct {
	opts     Options
	settings queries.Settings
	routes   map[routeKey]func(Options) Strategy
}

// NewResolver builds the routing table.
func NewResolver(opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = types.NopLogger{}
	}
	return &Resolver{
		opts:     opts,
		settings: queries.SettingsFrom(opts.Scenario),
		routes: map[routeKey]func(Options) Strategy{
			{types.ChannelCases, types.ResourceCase, types.ActionCreate, queries.ObjectKindUnknown}: func(o Options) Strategy {
				return NewCaseCreated(o)
			},
			{types.ChannelCases, types.ResourceStatus, types.ActionCreate, queries.ObjectKindUnknown}: func(o Options) Strategy {
				return NewCaseStatusChanged(o)
			},
			{types.ChannelObjects, types.ResourceObject, types.ActionCreate, queries.ObjectKindTask}: func(o Options) Strategy {
				return NewTaskAssigned(o)
			},
			{types.ChannelObjects, types.ResourceObject, types.ActionCreate, queries.ObjectKindMessage}: func(o Options) Strategy {
				return NewMessageReceived(o)
			},
			{types.ChannelDecisions, types.ResourceDecisionDocument, types.ActionCreate, queries.ObjectKindUnknown}: func(o Options) Strategy {
				return NewDecisionMade(o)
			},
		},
	}
}

// Resolve returns a fresh strategy for event, or NotImplemented when no
// route matches. Strategies hold per-event state and are not shared.
func (r *Resolver) Resolve(event types.NotificationEvent) Strategy {
	key := routeKey{event.Channel, event.Resource, event.Action, queries.ObjectKindUnknown}
	if event.Channel == types.ChannelObjects {
		key.kind = r.settings.ObjectKindOf(event)
	}
	if build, ok := r.routes[key]; ok {
		return build(r.opts)
	}
	return NotImplemented{}
}
