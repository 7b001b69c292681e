package config

import (
	"context"
	"os"
)

// EnvVarProvider resolves secret ids as environment variable names. It is the
// provider used for local development.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetSecretsBatch looks each id up with os.LookupEnv; missing ids are omitted.
func (p *EnvVarProvider) GetSecretsBatch(_ context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	for _, id := range ids {
		if val, ok := os.LookupEnv(id); ok {
			result[id] = val
		}
	}
	return result, nil
}
