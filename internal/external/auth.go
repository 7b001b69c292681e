package external

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Authorizer decorates an outbound request with credentials.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// NoAuth leaves the request untouched.
type NoAuth struct{}

// Authorize implements Authorizer.
func (NoAuth) Authorize(*http.Request) error { return nil }

// TokenAuth sends a static API token, as the objects and Open Klant v2 APIs
// expect: "Authorization: Token <key>".
type TokenAuth struct {
	Token string
}

// Authorize implements Authorizer.
func (a TokenAuth) Authorize(req *http.Request) error {
	req.Header.Set("Authorization", "Token "+a.Token)
	return nil
}

// zgwClaims is the claim set the ZGW reference implementations accept.
type zgwClaims struct {
	jwt.RegisteredClaims
	ClientID           string `json:"client_id"`
	UserID             string `json:"user_id"`
	UserRepresentation string `json:"user_representation"`
}

// ZGWTokenSource signs short-lived HS256 bearer tokens for the ZGW APIs
// (zaken, catalogi, besluiten). A token is reused until it is within
// refreshMargin of expiry.
type ZGWTokenSource struct {
	clientID string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

const (
	zgwTokenTTL   = 15 * time.Minute
	refreshMargin = time.Minute
)

// NewZGWTokenSource creates a token source for clientID signed with secret.
func NewZGWTokenSource(clientID, secret string) *ZGWTokenSource {
	return &ZGWTokenSource{
		clientID: clientID,
		secret:   []byte(secret),
		ttl:      zgwTokenTTL,
		now:      time.Now,
	}
}

// Token returns a valid signed token, minting a new one when needed.
func (s *ZGWTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(refreshMargin).Before(s.expires) {
		return s.token, nil
	}

	expires := now.Add(s.ttl)
	claims := zgwClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		ClientID:           s.clientID,
		UserID:             s.clientID,
		UserRepresentation: s.clientID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign ZGW token: %w", err)
	}
	s.token, s.expires = signed, expires
	return signed, nil
}

// Authorize implements Authorizer.
func (s *ZGWTokenSource) Authorize(req *http.Request) error {
	token, err := s.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

var (
	_ Authorizer = NoAuth{}
	_ Authorizer = TokenAuth{}
	_ Authorizer = (*ZGWTokenSource)(nil)
)
