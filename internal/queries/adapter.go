// Package queries reads the backend entities a notification needs. Every
// backend domain is reached through a capability interface; the concrete
// API version behind it is chosen once at startup from configuration, so
// scenario code never knows which version answered.
package queries

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"omc/internal/config"
	"omc/internal/external"
	"omc/internal/types"
)

// VersionedAdapter identifies the backend integration behind a capability.
type VersionedAdapter interface {
	Name() string
	Version() string
}

// CaseQueries reads cases, their statuses and roles, and the catalogue
// entries (case types, status types) they refer to.
type CaseQueries interface {
	VersionedAdapter
	GetCase(ctx context.Context, uri string) (types.Case, error)
	GetCaseStatuses(ctx context.Context, caseURI string) ([]types.CaseStatus, error)
	GetCaseStatus(ctx context.Context, statusURI string) (types.CaseStatus, error)
	GetStatusType(ctx context.Context, uri string) (types.StatusType, error)
	GetCaseType(ctx context.Context, uri string) (types.CaseType, error)
	GetCaseRoles(ctx context.Context, caseURI, subjectType string) ([]types.CaseRole, error)
}

// PartyQueries finds citizens and organizations and returns them in the
// version-independent CommonPartyData shape.
type PartyQueries interface {
	VersionedAdapter
	GetPartyByBSN(ctx context.Context, bsn string) (types.CommonPartyData, error)
	GetPartyByKVK(ctx context.Context, kvk string) (types.CommonPartyData, error)
}

// ObjectQueries reads task and message objects.
type ObjectQueries interface {
	VersionedAdapter
	GetTask(ctx context.Context, uri string) (types.TaskObject, error)
	GetMessage(ctx context.Context, uri string) (types.MessageObject, error)
}

// ObjectTypeQueries reads the object types catalogue.
type ObjectTypeQueries interface {
	VersionedAdapter
	GetObjectType(ctx context.Context, uri string) (types.ObjectType, error)
}

// DecisionQueries reads decisions and their documents and types.
type DecisionQueries interface {
	VersionedAdapter
	GetDecision(ctx context.Context, uri string) (types.Decision, error)
	GetDecisionType(ctx context.Context, uri string) (types.DecisionType, error)
	GetDecisionDocument(ctx context.Context, uri string) (types.DecisionDocument, error)
}

// Adapters is the set of backend integrations wired for this process.
type Adapters struct {
	Cases       CaseQueries
	Parties     PartyQueries
	Objects     ObjectQueries
	ObjectTypes ObjectTypeQueries
	Decisions   DecisionQueries
}

// All lists the adapters in a stable order. Unwired (nil) adapters are
// included as nil so callers can report them as unavailable.
func (a *Adapters) All() []VersionedAdapter {
	if a == nil {
		return nil
	}
	return []VersionedAdapter{a.Cases, a.Parties, a.Objects, a.ObjectTypes, a.Decisions}
}

// NewAdapters selects one adapter version per domain from cfg. An API
// version whose major number has no adapter fails startup.
func NewAdapters(cfg *config.Config, opts ...external.BaseClientOption) (*Adapters, error) {
	client := func(name string, bc config.BackendConfig) *external.BackendClient {
		return external.NewBackendClient(name, bc, opts...)
	}

	var (
		a   Adapters
		err error
	)
	if a.Cases, err = selectVersion("zaken", cfg.Zaken.APIVersion, map[int]func() CaseQueries{
		1: func() CaseQueries { return NewZakenV1(client("zaken", cfg.Zaken)) },
		2: func() CaseQueries { return NewZakenV2(client("zaken", cfg.Zaken)) },
	}); err != nil {
		return nil, err
	}
	if a.Parties, err = selectVersion("klanten", cfg.Klanten.APIVersion, map[int]func() PartyQueries{
		1: func() PartyQueries { return NewKlantenV1(client("klanten", cfg.Klanten)) },
		2: func() PartyQueries { return NewKlantenV2(client("klanten", cfg.Klanten)) },
	}); err != nil {
		return nil, err
	}
	if a.Objects, err = selectVersion("objecten", cfg.Objecten.APIVersion, map[int]func() ObjectQueries{
		2: func() ObjectQueries { return NewObjectenV2(client("objecten", cfg.Objecten)) },
	}); err != nil {
		return nil, err
	}
	if a.ObjectTypes, err = selectVersion("objecttypen", cfg.ObjectTypen.APIVersion, map[int]func() ObjectTypeQueries{
		2: func() ObjectTypeQueries { return NewObjectTypenV2(client("objecttypen", cfg.ObjectTypen)) },
	}); err != nil {
		return nil, err
	}
	if a.Decisions, err = selectVersion("besluiten", cfg.Besluiten.APIVersion, map[int]func() DecisionQueries{
		1: func() DecisionQueries { return NewBesluitenV1(client("besluiten", cfg.Besluiten)) },
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

// selectVersion picks the constructor for the configured major version, or
// the highest supported one when no version is configured.
func selectVersion[T any](domain, configured string, supported map[int]func() T) (T, error) {
	var zero T
	if configured == "" {
		latest := -1
		for major := range supported {
			latest = max(latest, major)
		}
		return supported[latest](), nil
	}

	major, err := majorVersion(configured)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalConfig,
			fmt.Sprintf("%s: invalid API version %q", domain, configured), err)
	}
	build, ok := supported[major]
	if !ok {
		return zero, types.NewAppError(types.ErrCodeInternalConfig,
			fmt.Sprintf("%s: no adapter for API version %q", domain, configured), nil)
	}
	return build(), nil
}

func majorVersion(v string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimPrefix(strings.ToLower(v), "v"), ".")
	return strconv.Atoi(head)
}
