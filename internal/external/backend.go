package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"omc/internal/config"
	"omc/internal/types"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// BackendClient performs authenticated JSON reads against one backend host.
// Adapters build full URIs themselves; BackendClient only knows the host's
// scheme and domain so that relative paths can be resolved.
type BackendClient struct {
	base   *BaseClient
	auth   Authorizer
	scheme string
	domain string
}

// NewBackendClient wires a BaseClient and Authorizer for cfg.
func NewBackendClient(name string, cfg config.BackendConfig, opts ...BaseClientOption) *BackendClient {
	base := NewBaseClient(
		&http.Client{Timeout: cfg.Timeout},
		name,
		DefaultRetryPolicy(),
		"OMC/1.0",
		opts...,
	)
	return NewBackendClientWithBase(base, AuthorizerFor(cfg), cfg.Scheme, cfg.Domain)
}

// NewBackendClientWithBase creates a BackendClient around an existing
// BaseClient.
func NewBackendClientWithBase(base *BaseClient, auth Authorizer, scheme, domain string) *BackendClient {
	if auth == nil {
		auth = NoAuth{}
	}
	if scheme == "" {
		scheme = "https"
	}
	return &BackendClient{base: base, auth: auth, scheme: scheme, domain: domain}
}

// AuthorizerFor picks the credential style configured for a backend: a
// static API key wins over ZGW JWT credentials.
func AuthorizerFor(cfg config.BackendConfig) Authorizer {
	switch {
	case cfg.APIKey != "":
		return TokenAuth{Token: cfg.APIKey.Unmask()}
	case cfg.ClientID != "":
		return NewZGWTokenSource(cfg.ClientID, cfg.Secret.Unmask())
	default:
		return NoAuth{}
	}
}

// URL builds {scheme}://{domain}/{path}?{query}.
func (c *BackendClient) URL(path string, query url.Values) string {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.domain,
		Path:     "/" + strings.TrimPrefix(path, "/"),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// GetJSON fetches uri and decodes the body into out.
//
// Error mapping:
//   - transport failure, 5xx, open breaker -> ErrCodeUpstreamUnavailable
//   - 429 -> ErrCodeUpstreamRateLimited
//   - 404 -> ErrCodeUpstreamNotFound
//   - any other non-2xx -> ErrCodeUpstreamRejected
//   - undecodable 2xx body -> ErrCodeMalformedResponse
func (c *BackendClient) GetJSON(ctx context.Context, uri string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create backend request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Crs", "EPSG:4326")
	if err := c.auth.Authorize(req); err != nil {
		return types.NewAppError(types.ErrCodeInternalConfig, "failed to authorize backend request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return mapBackendStatus(uri, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppErrorWithDetails(
			types.ErrCodeMalformedResponse,
			"backend response could not be decoded",
			err,
			map[string]any{"uri": uri},
		)
	}
	return nil
}

func mapBackendStatus(uri string, status int, body []byte) error {
	details := map[string]any{"uri": uri, "status": status}
	switch status {
	case http.StatusNotFound:
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamNotFound,
			"backend resource not found", nil, details)
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamRejected,
			"backend rejected credentials", nil, details)
	default:
		details["body"] = string(body)
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamRejected,
			fmt.Sprintf("backend returned %d", status), nil, details)
	}
}
