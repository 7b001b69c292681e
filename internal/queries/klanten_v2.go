package queries

import (
	"context"
	"net/url"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	klantenV2Name    = "KlantinteractiesAPI"
	klantenV2Version = "2.0.0"

	klantenV2Parties   = "klantinteracties/api/v1/partijen"
	klantenV2Addresses = "klantinteracties/api/v1/digitaleadressen"

	identifierBSN = "bsn"
	identifierKVK = "kvk_nummer"
)

// KlantenV2 reads parties from Open Klant 2 (Klantinteracties API). A party
// and its digital addresses are two separate resources.
type KlantenV2 struct {
	client *external.BackendClient
}

// NewKlantenV2 creates a KlantenV2 adapter.
func NewKlantenV2(client *external.BackendClient) *KlantenV2 {
	return &KlantenV2{client: client}
}

func (k *KlantenV2) Name() string    { return klantenV2Name }
func (k *KlantenV2) Version() string { return klantenV2Version }

func (k *KlantenV2) GetPartyByBSN(ctx context.Context, bsn string) (types.CommonPartyData, error) {
	return k.getParty(ctx, identifierBSN, bsn, types.IdentificationBSN)
}

func (k *KlantenV2) GetPartyByKVK(ctx context.Context, kvk string) (types.CommonPartyData, error) {
	return k.getParty(ctx, identifierKVK, kvk, types.IdentificationKVK)
}

func (k *KlantenV2) getParty(ctx context.Context, code, value string, kind types.IdentificationType) (types.CommonPartyData, error) {
	parties, err := listAll[PartyV2](ctx, k.client, k.client.URL(klantenV2Parties, url.Values{
		"partijIdentificator__codeSoortObjectId": {code},
		"partijIdentificator__objectId":          {value},
	}))
	if err != nil {
		return types.CommonPartyData{}, err
	}
	if len(parties) == 0 {
		return types.CommonPartyData{}, partyNotFound(kind)
	}
	party := parties[0]
	if err := requireField("partij", "uuid", party.UUID); err != nil {
		return types.CommonPartyData{}, err
	}

	addresses, err := listAll[DigitalAddressV2](ctx, k.client, k.client.URL(klantenV2Addresses, url.Values{
		"verstrektDoorPartij__uuid": {party.UUID},
	}))
	if err != nil {
		return types.CommonPartyData{}, err
	}
	return MapPartyV2(party, addresses), nil
}

var _ PartyQueries = (*KlantenV2)(nil)
