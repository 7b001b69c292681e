package queries

import (
	"context"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	objectTypenV2Name    = "ObjecttypenAPI"
	objectTypenV2Version = "2.2.2"

	objectTypenV2Types = "api/v2/objecttypes"
)

// ObjectTypenV2 reads the Objecttypes API 2.x catalogue.
type ObjectTypenV2 struct {
	client *external.BackendClient
}

// NewObjectTypenV2 creates an ObjectTypenV2 adapter.
func NewObjectTypenV2(client *external.BackendClient) *ObjectTypenV2 {
	return &ObjectTypenV2{client: client}
}

func (o *ObjectTypenV2) Name() string    { return objectTypenV2Name }
func (o *ObjectTypenV2) Version() string { return objectTypenV2Version }

func (o *ObjectTypenV2) GetObjectType(ctx context.Context, uri string) (types.ObjectType, error) {
	var ot types.ObjectType
	if err := getResource(ctx, o.client, objectTypenV2Types, uri, &ot); err != nil {
		return types.ObjectType{}, err
	}
	ot.Version = objectTypenV2Version
	return ot, nil
}

var _ ObjectTypeQueries = (*ObjectTypenV2)(nil)
