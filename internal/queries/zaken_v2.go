package queries

import (
	"context"
	"net/url"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	zakenV2Name    = "ZakenAPI"
	zakenV2Version = "2.0.0"

	zakenV2Cases       = "zaken/api/v2/zaken"
	zakenV2Statuses    = "zaken/api/v2/statussen"
	zakenV2Roles       = "zaken/api/v2/rollen"
	catalogiV2CaseType = "catalogi/api/v2/zaaktypen"
	catalogiV2Status   = "catalogi/api/v2/statustypen"
)

// RoleV2 is the 2.x role payload: the generic label moved under "roltype"
// and the subject under "betrokkene".
type RoleV2 struct {
	URI      string `json:"url"`
	CaseURI  string `json:"zaak"`
	RoleType struct {
		GenericLabel string `json:"omschrijvingGeneriek"`
	} `json:"roltype"`
	Subject struct {
		Type           string `json:"type"`
		Identification struct {
			BSN           string `json:"bsn"`
			FirstName     string `json:"voornamen"`
			SurnamePrefix string `json:"voorvoegselAchternaam"`
			Surname       string `json:"achternaam"`
		} `json:"identificatie"`
	} `json:"betrokkene"`
}

// MapRoleV2 converts a 2.x role into the shared role shape.
func MapRoleV2(r RoleV2) types.CaseRole {
	id := r.Subject.Identification
	return types.CaseRole{
		URI:              r.URI,
		CaseURI:          r.CaseURI,
		SubjectType:      r.Subject.Type,
		GenericRoleLabel: r.RoleType.GenericLabel,
		Citizen: types.CitizenData{
			BSN:           id.BSN,
			FirstName:     id.FirstName,
			SurnamePrefix: id.SurnamePrefix,
			Surname:       id.Surname,
		},
		Version: zakenV2Version,
	}
}

// ZakenV2 reads the Zaken and Catalogi APIs 2.x.
type ZakenV2 struct {
	zakenAPI
}

// NewZakenV2 creates a ZakenV2 adapter.
func NewZakenV2(client *external.BackendClient) *ZakenV2 {
	return &ZakenV2{zakenAPI{
		client:  client,
		version: zakenV2Version,
		paths: zakenPaths{
			cases:       zakenV2Cases,
			statuses:    zakenV2Statuses,
			roles:       zakenV2Roles,
			caseTypes:   catalogiV2CaseType,
			statusTypes: catalogiV2Status,
		},
	}}
}

func (z *ZakenV2) Name() string    { return zakenV2Name }
func (z *ZakenV2) Version() string { return zakenV2Version }

func (z *ZakenV2) GetCaseRoles(ctx context.Context, caseURI, subjectType string) ([]types.CaseRole, error) {
	q := url.Values{"zaak": {caseURI}}
	if subjectType != "" {
		q.Set("betrokkene__type", subjectType)
	}
	raw, err := listAll[RoleV2](ctx, z.client, z.client.URL(z.paths.roles, q))
	if err != nil {
		return nil, err
	}
	roles := make([]types.CaseRole, len(raw))
	for i, r := range raw {
		roles[i] = MapRoleV2(r)
	}
	return roles, nil
}

var _ CaseQueries = (*ZakenV2)(nil)
