package queries

import (
	"context"
	"net/url"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	klantenV1Name    = "KlantenAPI"
	klantenV1Version = "1.0.0"

	klantenV1Parties = "klanten/api/v1/klanten"
)

// KlantenV1 reads citizens from the Klanten API 1.x.
type KlantenV1 struct {
	client *external.BackendClient
}

// NewKlantenV1 creates a KlantenV1 adapter.
func NewKlantenV1(client *external.BackendClient) *KlantenV1 {
	return &KlantenV1{client: client}
}

func (k *KlantenV1) Name() string    { return klantenV1Name }
func (k *KlantenV1) Version() string { return klantenV1Version }

func (k *KlantenV1) GetPartyByBSN(ctx context.Context, bsn string) (types.CommonPartyData, error) {
	parties, err := listAll[PartyV1](ctx, k.client,
		k.client.URL(klantenV1Parties, url.Values{"subjectNatuurlijkPersoon__inpBsn": {bsn}}))
	if err != nil {
		return types.CommonPartyData{}, err
	}
	if len(parties) == 0 {
		return types.CommonPartyData{}, partyNotFound(types.IdentificationBSN)
	}
	return MapPartyV1(parties[0]), nil
}

// GetPartyByKVK is not offered by the 1.x API; organizations are only
// registered in Klantinteracties.
func (k *KlantenV1) GetPartyByKVK(context.Context, string) (types.CommonPartyData, error) {
	return types.CommonPartyData{}, types.NewAppError(types.ErrCodeNotImplementedOperation,
		"Klanten API 1.x cannot look up parties by KVK number", nil)
}

func partyNotFound(kind types.IdentificationType) error {
	return types.NewAppErrorWithDetails(types.ErrCodeUpstreamNotFound,
		"no party registered for identification", nil,
		map[string]any{"identification_type": string(kind)})
}

var _ PartyQueries = (*KlantenV1)(nil)
