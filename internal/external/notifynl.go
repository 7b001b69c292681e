package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"omc/internal/types"

	"github.com/golang-jwt/jwt/v5"
)

// notifyAPIBase is the default NotifyNL API base URL.
const notifyAPIBase = "https://api.notifynl.nl"

// Identity of the delivery integration as reported by the versions register.
const (
	NotifyIntegrationName    = "NotifyNL"
	NotifyIntegrationVersion = "2.0.0"
)

// notifyKeyPartLen is the length of the service id and secret that make up
// the tail of a Notify API key ("{name}-{service id}-{secret}").
const notifyKeyPartLen = 36

// DeliveryRequest is one message handed to the delivery provider.
type DeliveryRequest struct {
	Method          types.NotifyMethod
	Recipient       string
	TemplateID      string
	Personalization map[string]any
	// Reference is an opaque traceability token echoed back by the provider.
	Reference string
}

// DeliveryClient sends messages through the delivery provider and returns
// the provider's notification id.
type DeliveryClient interface {
	Deliver(ctx context.Context, req DeliveryRequest) (string, error)
}

// NotifyClientConfig holds the configuration for creating a NotifyClient.
type NotifyClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to notifyAPIBase
	Logger  *slog.Logger
}

// NotifyClient implements DeliveryClient against the NotifyNL v2 API.
type NotifyClient struct {
	base      *BaseClient
	serviceID string
	secret    []byte
	baseURL   string
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifyClient creates a NotifyClient with the production retry policy.
func NewNotifyClient(httpClient *http.Client, cfg NotifyClientConfig) (*NotifyClient, error) {
	base := NewBaseClient(
		httpClient,
		"notifynl",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"OMC/1.0",
	)
	return NewNotifyClientWithBase(base, cfg)
}

// NewNotifyClientWithBase creates a NotifyClient around an existing
// BaseClient. It fails when the API key does not have the expected shape.
func NewNotifyClientWithBase(base *BaseClient, cfg NotifyClientConfig) (*NotifyClient, error) {
	serviceID, secret, err := splitNotifyKey(cfg.APIKey)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalConfig, "invalid Notify API key", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = notifyAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &NotifyClient{
		base:      base,
		serviceID: serviceID,
		secret:    []byte(secret),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
		now:       time.Now,
	}, nil
}

func splitNotifyKey(key string) (serviceID, secret string, err error) {
	if len(key) < 2*notifyKeyPartLen+1 {
		return "", "", errors.New("key too short")
	}
	secret = key[len(key)-notifyKeyPartLen:]
	serviceID = key[len(key)-2*notifyKeyPartLen-1 : len(key)-notifyKeyPartLen-1]
	return serviceID, secret, nil
}

type notifyPayload struct {
	EmailAddress    string         `json:"email_address,omitempty"`
	PhoneNumber     string         `json:"phone_number,omitempty"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

type notifyResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// Deliver posts the message to the endpoint matching req.Method.
//
// Error mapping:
//   - 400/403 -> types.ErrCodeUpstreamNotifyRejected (bad template, bad key)
//   - 429, 5xx -> handled by BaseClient
//   - other -> types.ErrCodeUpstreamNotify
func (c *NotifyClient) Deliver(ctx context.Context, req DeliveryRequest) (string, error) {
	payload := notifyPayload{
		TemplateID:      req.TemplateID,
		Personalisation: req.Personalization,
		Reference:       req.Reference,
	}

	var path string
	switch req.Method {
	case types.MethodEmail:
		path, payload.EmailAddress = "/v2/notifications/email", req.Recipient
	case types.MethodSMS:
		path, payload.PhoneNumber = "/v2/notifications/sms", req.Recipient
	case types.MethodLetter:
		path = "/v2/notifications/letter"
	default:
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("unsupported delivery method %q", req.Method), nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to marshal Notify payload", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create Notify request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.setAuthHeaders(httpReq); err != nil {
		return "", err
	}

	resp, err := c.base.Do(httpReq)
	if err != nil {
		return "", c.wrapNotifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp, req.Method)
	}

	var out notifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", types.NewAppError(types.ErrCodeMalformedResponse, "Notify response could not be decoded", err)
	}

	c.logger.DebugContext(ctx, "notification accepted by provider",
		"method", req.Method,
		"notification_id", out.ID,
	)
	return out.ID, nil
}

// setAuthHeaders signs a fresh bearer token; Notify rejects tokens whose
// iat is more than 30 seconds off.
func (c *NotifyClient) setAuthHeaders(req *http.Request) error {
	claims := jwt.RegisteredClaims{
		Issuer:   c.serviceID,
		IssuedAt: jwt.NewNumericDate(c.now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalConfig, "failed to sign Notify token", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

type notifyErrorResponse struct {
	StatusCode int                 `json:"status_code"`
	Errors     []notifyErrorDetail `json:"errors"`
}

type notifyErrorDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *NotifyClient) handleErrorResponse(resp *http.Response, method types.NotifyMethod) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamNotify,
			fmt.Sprintf("Notify returned status %d and response body was unreadable", resp.StatusCode),
			readErr,
		)
	}

	msg := string(body)
	var nErr notifyErrorResponse
	if err := json.Unmarshal(body, &nErr); err == nil && len(nErr.Errors) > 0 {
		msg = nErr.Errors[0].Error + ": " + nErr.Errors[0].Message
	}

	details := map[string]any{"status": resp.StatusCode, "method": string(method)}
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamNotifyRejected,
			"Notify rejected the request: "+msg, nil, details)
	default:
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamNotify,
			fmt.Sprintf("Notify error (%d): %s", resp.StatusCode, msg), nil, details)
	}
}

// wrapNotifyError keeps BaseClient AppErrors and context errors intact.
func (c *NotifyClient) wrapNotifyError(err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamNotify, "Notify request failed", err)
}

var _ DeliveryClient = (*NotifyClient)(nil)
