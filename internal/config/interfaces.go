package config

import "context"

// SecretProvider abstracts secret retrieval so production can read AWS
// Secrets Manager while local development reads plain environment variables.
type SecretProvider interface {
	// GetSecretsBatch resolves every id it can and returns id -> plaintext.
	// Ids that do not exist are omitted from the map rather than reported
	// as an error; the caller decides whether absence is fatal.
	GetSecretsBatch(ctx context.Context, ids []string) (map[string]string, error)
}
