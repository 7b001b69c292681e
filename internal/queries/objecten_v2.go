package queries

import (
	"context"
	"time"

	"omc/internal/external"
	"omc/internal/types"
)

const (
	objectenV2Name    = "ObjectenAPI"
	objectenV2Version = "2.4.3"

	objectenV2Objects = "api/v2/objects"
)

// objectRecord is the Objects API envelope; the domain payload sits in
// record.data and is shaped by the object type.
type objectRecord[T any] struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Record struct {
		TypeVersion int `json:"typeVersion"`
		Data        T   `json:"data"`
	} `json:"record"`
}

type identificationData struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type taskData struct {
	Title          string             `json:"titel"`
	Status         string             `json:"status"`
	CaseURI        string             `json:"zaak"`
	Deadline       string             `json:"verloopdatum"`
	Identification identificationData `json:"identificatie"`
}

type messageData struct {
	Subject        string             `json:"onderwerp"`
	PublishedOn    string             `json:"publicatiedatum"`
	Identification identificationData `json:"identificatie"`
}

// ObjectenV2 reads task and message objects from the Objects API 2.x.
type ObjectenV2 struct {
	client *external.BackendClient
}

// NewObjectenV2 creates an ObjectenV2 adapter.
func NewObjectenV2(client *external.BackendClient) *ObjectenV2 {
	return &ObjectenV2{client: client}
}

func (o *ObjectenV2) Name() string    { return objectenV2Name }
func (o *ObjectenV2) Version() string { return objectenV2Version }

func (o *ObjectenV2) GetTask(ctx context.Context, uri string) (types.TaskObject, error) {
	var rec objectRecord[taskData]
	if err := getResource(ctx, o.client, objectenV2Objects, uri, &rec); err != nil {
		return types.TaskObject{}, err
	}
	d := rec.Record.Data
	return types.TaskObject{
		URI:           rec.URL,
		ObjectTypeURI: rec.Type,
		Title:         d.Title,
		Status:        types.ParseTaskStatus(d.Status),
		CaseURI:       d.CaseURI,
		Deadline:      parseDate(d.Deadline),
		Identification: types.Identification{
			Type:  types.ParseIdentificationType(d.Identification.Type),
			Value: d.Identification.Value,
		},
		Version: objectenV2Version,
	}, nil
}

func (o *ObjectenV2) GetMessage(ctx context.Context, uri string) (types.MessageObject, error) {
	var rec objectRecord[messageData]
	if err := getResource(ctx, o.client, objectenV2Objects, uri, &rec); err != nil {
		return types.MessageObject{}, err
	}
	d := rec.Record.Data
	return types.MessageObject{
		URI:           rec.URL,
		ObjectTypeURI: rec.Type,
		Subject:       d.Subject,
		PublishedOn:   parseDate(d.PublishedOn),
		Identification: types.Identification{
			Type:  types.ParseIdentificationType(d.Identification.Type),
			Value: d.Identification.Value,
		},
		Version: objectenV2Version,
	}, nil
}

// parseDate accepts both timestamps and plain dates. Anything else yields
// the zero time.
func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ ObjectQueries = (*ObjectenV2)(nil)
