package types

import "strings"

// Action is the kind of change an inbound notification reports.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "destroy"
	ActionUnknown Action = "unknown"
)

// UnmarshalText maps unrecognized actions to ActionUnknown instead of failing.
func (a *Action) UnmarshalText(text []byte) error {
	switch v := Action(strings.ToLower(string(text))); v {
	case ActionCreate, ActionUpdate, ActionDelete:
		*a = v
	default:
		*a = ActionUnknown
	}
	return nil
}

// Channel identifies the publishing backend (the ZGW "kanaal").
type Channel string

const (
	ChannelCases     Channel = "zaken"
	ChannelObjects   Channel = "objecten"
	ChannelDecisions Channel = "besluiten"
	ChannelUnknown   Channel = "unknown"
)

// UnmarshalText maps unrecognized channels to ChannelUnknown.
func (c *Channel) UnmarshalText(text []byte) error {
	switch v := Channel(strings.ToLower(string(text))); v {
	case ChannelCases, ChannelObjects, ChannelDecisions:
		*c = v
	default:
		*c = ChannelUnknown
	}
	return nil
}

// Resource is the sub-kind of entity within a Channel.
type Resource string

const (
	ResourceCase             Resource = "zaak"
	ResourceStatus           Resource = "status"
	ResourceResult           Resource = "resultaat"
	ResourceCaseDocument     Resource = "zaakinformatieobject"
	ResourceObject           Resource = "object"
	ResourceDecision         Resource = "besluit"
	ResourceDecisionDocument Resource = "besluitinformatieobject"
	ResourceUnknown          Resource = "unknown"
)

// UnmarshalText maps unrecognized resources to ResourceUnknown.
func (r *Resource) UnmarshalText(text []byte) error {
	switch v := Resource(strings.ToLower(string(text))); v {
	case ResourceCase, ResourceStatus, ResourceResult, ResourceCaseDocument,
		ResourceObject, ResourceDecision, ResourceDecisionDocument:
		*r = v
	default:
		*r = ResourceUnknown
	}
	return nil
}

// DistributionChannel is the citizen's preferred way of being contacted.
type DistributionChannel string

const (
	DistributionEmail   DistributionChannel = "email"
	DistributionSMS     DistributionChannel = "sms"
	DistributionBoth    DistributionChannel = "both"
	DistributionLetter  DistributionChannel = "post"
	DistributionNone    DistributionChannel = "none"
	DistributionUnknown DistributionChannel = "unknown"
)

// ParseDistributionChannel normalizes the free-form preference strings used
// by the party backends. Matching is case-insensitive.
func ParseDistributionChannel(s string) DistributionChannel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email", "e-mail":
		return DistributionEmail
	case "sms", "telefoonnummer":
		return DistributionSMS
	case "both", "beide":
		return DistributionBoth
	case "post", "brief", "letter":
		return DistributionLetter
	case "none", "geen":
		return DistributionNone
	default:
		return DistributionUnknown
	}
}

// NotifyMethod is the delivery channel of one outbound package.
type NotifyMethod string

const (
	MethodEmail  NotifyMethod = "email"
	MethodSMS    NotifyMethod = "sms"
	MethodLetter NotifyMethod = "letter"
)

// IdentificationType is the kind of identifier an object uses to point at a party.
type IdentificationType string

const (
	IdentificationBSN     IdentificationType = "bsn"
	IdentificationKVK     IdentificationType = "kvk"
	IdentificationUnknown IdentificationType = "unknown"
)

// ParseIdentificationType normalizes identification kinds ("BSN", "bsn", ...).
func ParseIdentificationType(s string) IdentificationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bsn":
		return IdentificationBSN
	case "kvk":
		return IdentificationKVK
	default:
		return IdentificationUnknown
	}
}

// TaskStatus is the lifecycle state of a task object.
type TaskStatus string

const (
	TaskStatusOpen    TaskStatus = "open"
	TaskStatusClosed  TaskStatus = "gesloten"
	TaskStatusUnknown TaskStatus = "unknown"
)

// ParseTaskStatus normalizes task statuses. Dutch and English spellings are
// accepted for closed tasks.
func ParseTaskStatus(s string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return TaskStatusOpen
	case "gesloten", "afgerond", "closed":
		return TaskStatusClosed
	default:
		return TaskStatusUnknown
	}
}
