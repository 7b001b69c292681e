package queries

import (
	"context"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	besluitenV1Name    = "BesluitenAPI"
	besluitenV1Version = "1.1.0"

	besluitenV1Decisions    = "besluiten/api/v1/besluiten"
	besluitenV1Documents    = "besluiten/api/v1/besluitinformatieobjecten"
	catalogiV1DecisionTypes = "catalogi/api/v1/besluittypen"
)

// BesluitenV1 reads the Besluiten API 1.x and decision types from Catalogi.
type BesluitenV1 struct {
	client *external.BackendClient
}

// NewBesluitenV1 creates a BesluitenV1 adapter.
func NewBesluitenV1(client *external.BackendClient) *BesluitenV1 {
	return &BesluitenV1{client: client}
}

func (b *BesluitenV1) Name() string    { return besluitenV1Name }
func (b *BesluitenV1) Version() string { return besluitenV1Version }

func (b *BesluitenV1) GetDecision(ctx context.Context, uri string) (types.Decision, error) {
	var d types.Decision
	if err := getResource(ctx, b.client, besluitenV1Decisions, uri, &d); err != nil {
		return types.Decision{}, err
	}
	if err := requireField("besluit", "besluittype", d.DecisionTypeURI); err != nil {
		return types.Decision{}, err
	}
	d.Version = besluitenV1Version
	return d, nil
}

func (b *BesluitenV1) GetDecisionType(ctx context.Context, uri string) (types.DecisionType, error) {
	var dt types.DecisionType
	if err := getResource(ctx, b.client, catalogiV1DecisionTypes, uri, &dt); err != nil {
		return types.DecisionType{}, err
	}
	dt.Version = besluitenV1Version
	return dt, nil
}

func (b *BesluitenV1) GetDecisionDocument(ctx context.Context, uri string) (types.DecisionDocument, error) {
	var doc types.DecisionDocument
	if err := getResource(ctx, b.client, besluitenV1Documents, uri, &doc); err != nil {
		return types.DecisionDocument{}, err
	}
	doc.Version = besluitenV1Version
	return doc, nil
}

var _ DecisionQueries = (*BesluitenV1)(nil)
