package queries

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"omc/internal/external"
	"omc/internal/types"

	"github.com/google/uuid"
)

// maxPages bounds how many "next" links a list call follows.
const maxPages = 25

// page is the paginated list envelope shared by the ZGW and Objects APIs.
type page[T any] struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

// listAll follows "next" links until the list is exhausted.
func listAll[T any](ctx context.Context, c *external.BackendClient, uri string) ([]T, error) {
	var all []T
	for i := 0; uri != ""; i++ {
		if i == maxPages {
			return nil, types.NewAppErrorWithDetails(types.ErrCodeMalformedResponse,
				"list did not terminate", nil, map[string]any{"pages": maxPages})
		}
		var p page[T]
		if err := c.GetJSON(ctx, uri, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		next, err := nextPageURL(c, p.Next)
		if err != nil {
			return nil, err
		}
		uri = next
	}
	return all, nil
}

// nextPageURL keeps the path and query of a "next" link and rebuilds it on
// the client's domain, so credentials never leave the configured host.
func nextPageURL(c *external.BackendClient, next string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrCodeMalformedResponse,
			"invalid next page link", err, map[string]any{"next": next})
	}
	return c.URL(u.Path, u.Query()), nil
}

// resourceID extracts the trailing UUID of a resource URI. Adapters rebuild
// request URIs on their configured domain from it instead of dereferencing
// hosts taken from inbound payloads.
func resourceID(uri string) (uuid.UUID, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return uuid.Nil, malformedURI(uri, err)
	}
	id, err := uuid.Parse(path.Base(strings.TrimSuffix(u.Path, "/")))
	if err != nil {
		return uuid.Nil, malformedURI(uri, err)
	}
	return id, nil
}

func malformedURI(uri string, err error) error {
	return types.NewAppErrorWithDetails(types.ErrCodeMalformedResponse,
		"resource URI does not end in a UUID", err, map[string]any{"uri": uri})
}

// resourceURL maps uri onto collection under the client's domain.
func resourceURL(c *external.BackendClient, collection, uri string) (string, error) {
	id, err := resourceID(uri)
	if err != nil {
		return "", err
	}
	return c.URL(path.Join(collection, id.String()), nil), nil
}

// getResource fetches the resource named by uri from collection.
func getResource(ctx context.Context, c *external.BackendClient, collection, uri string, out any) error {
	target, err := resourceURL(c, collection, uri)
	if err != nil {
		return err
	}
	return c.GetJSON(ctx, target, out)
}

// requireField reports a backend payload that lacks a field callers rely on.
func requireField(entity, field, value string) error {
	if value != "" {
		return nil
	}
	return types.NewAppErrorWithDetails(types.ErrCodeMalformedMissingField,
		fmt.Sprintf("%s has no %s", entity, field), nil,
		map[string]any{"entity": entity, "field": field})
}
