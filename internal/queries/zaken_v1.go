package queries

import (
	"context"
	"net/url"
	"sort"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	zakenV1Name    = "ZakenAPI"
	zakenV1Version = "1.5.1"

	zakenV1Cases       = "zaken/api/v1/zaken"
	zakenV1Statuses    = "zaken/api/v1/statussen"
	zakenV1Roles       = "zaken/api/v1/rollen"
	catalogiCaseTypes  = "catalogi/api/v1/zaaktypen"
	catalogiStatusType = "catalogi/api/v1/statustypen"
)

// zakenPaths are the collection paths one Zaken major version serves.
type zakenPaths struct {
	cases, statuses, roles, caseTypes, statusTypes string
}

// zakenAPI implements the case reads whose payloads did not change between
// Zaken majors. Each version adapter embeds it and adds its own role reads.
type zakenAPI struct {
	client  *external.BackendClient
	version string
	paths   zakenPaths
}

func (z *zakenAPI) GetCase(ctx context.Context, uri string) (types.Case, error) {
	var c types.Case
	if err := getResource(ctx, z.client, z.paths.cases, uri, &c); err != nil {
		return types.Case{}, err
	}
	if err := requireField("zaak", "zaaktype", c.CaseTypeURI); err != nil {
		return types.Case{}, err
	}
	c.Version = types.SchemaVersion(z.version)
	return c, nil
}

// GetCaseStatuses returns the status history of a case, oldest first.
func (z *zakenAPI) GetCaseStatuses(ctx context.Context, caseURI string) ([]types.CaseStatus, error) {
	statuses, err := listAll[types.CaseStatus](ctx, z.client,
		z.client.URL(z.paths.statuses, url.Values{"zaak": {caseURI}}))
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		statuses[i].Version = types.SchemaVersion(z.version)
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].SetAt.Before(statuses[j].SetAt)
	})
	return statuses, nil
}

func (z *zakenAPI) GetCaseStatus(ctx context.Context, statusURI string) (types.CaseStatus, error) {
	var s types.CaseStatus
	if err := getResource(ctx, z.client, z.paths.statuses, statusURI, &s); err != nil {
		return types.CaseStatus{}, err
	}
	if err := requireField("status", "statustype", s.StatusTypeURI); err != nil {
		return types.CaseStatus{}, err
	}
	s.Version = types.SchemaVersion(z.version)
	return s, nil
}

func (z *zakenAPI) GetStatusType(ctx context.Context, uri string) (types.StatusType, error) {
	var st types.StatusType
	if err := getResource(ctx, z.client, z.paths.statusTypes, uri, &st); err != nil {
		return types.StatusType{}, err
	}
	return st, nil
}

// GetCaseType returns the case type together with its status types ordered
// by sequence number.
func (z *zakenAPI) GetCaseType(ctx context.Context, uri string) (types.CaseType, error) {
	var ct types.CaseType
	if err := getResource(ctx, z.client, z.paths.caseTypes, uri, &ct); err != nil {
		return types.CaseType{}, err
	}
	if err := requireField("zaaktype", "identificatie", ct.Identification); err != nil {
		return types.CaseType{}, err
	}

	statusTypes, err := listAll[types.StatusType](ctx, z.client,
		z.client.URL(z.paths.statusTypes, url.Values{"zaaktype": {ct.URI}}))
	if err != nil {
		return types.CaseType{}, err
	}
	sort.SliceStable(statusTypes, func(i, j int) bool {
		return statusTypes[i].SequenceNum < statusTypes[j].SequenceNum
	})
	ct.StatusTypes = statusTypes
	ct.Version = types.SchemaVersion(z.version)
	return ct, nil
}

// ZakenV1 reads the Zaken and Catalogi APIs 1.x (Open Zaak).
type ZakenV1 struct {
	zakenAPI
}

// NewZakenV1 creates a ZakenV1 adapter.
func NewZakenV1(client *external.BackendClient) *ZakenV1 {
	return &ZakenV1{zakenAPI{
		client:  client,
		version: zakenV1Version,
		paths: zakenPaths{
			cases:       zakenV1Cases,
			statuses:    zakenV1Statuses,
			roles:       zakenV1Roles,
			caseTypes:   catalogiCaseTypes,
			statusTypes: catalogiStatusType,
		},
	}}
}

func (z *ZakenV1) Name() string    { return zakenV1Name }
func (z *ZakenV1) Version() string { return zakenV1Version }

// GetCaseRoles lists the roles of a case. The 1.x role payload decodes
// straight into types.CaseRole.
func (z *ZakenV1) GetCaseRoles(ctx context.Context, caseURI, subjectType string) ([]types.CaseRole, error) {
	q := url.Values{"zaak": {caseURI}}
	if subjectType != "" {
		q.Set("betrokkeneType", subjectType)
	}
	roles, err := listAll[types.CaseRole](ctx, z.client, z.client.URL(z.paths.roles, q))
	if err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Version = zakenV1Version
	}
	return roles, nil
}

var _ CaseQueries = (*ZakenV1)(nil)
