package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// secretsManagerAPI is the subset of the Secrets Manager client used here.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider resolves secret ids (names or ARNs) from AWS
// Secrets Manager. It is the provider for every non-local environment.
type SecretsManagerProvider struct {
	region   string
	endpoint string
	client   secretsManagerAPI
}

// NewSecretsManagerProvider creates a provider for the given region. A
// non-empty endpoint overrides the service URL (LocalStack).
func NewSecretsManagerProvider(region, endpoint string) *SecretsManagerProvider {
	return &SecretsManagerProvider{region: region, endpoint: endpoint}
}

func newSecretsManagerProviderWithClient(client secretsManagerAPI) *SecretsManagerProvider {
	return &SecretsManagerProvider{client: client}
}

func (p *SecretsManagerProvider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return fmt.Errorf("loading AWS config for Secrets Manager (region=%s): %w", p.region, err)
	}
	p.client = secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if p.endpoint != "" {
			o.BaseEndpoint = aws.String(p.endpoint)
		}
	})
	return nil
}

// GetSecretsBatch fetches each id with GetSecretValue. Secrets that do not
// exist are omitted; any other failure aborts the batch. Binary secrets are
// not supported.
func (p *SecretsManagerProvider) GetSecretsBatch(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during secret retrieval: %w", err)
		}

		out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(id),
		})
		if err != nil {
			var rnf *smtypes.ResourceNotFoundException
			if errors.As(err, &rnf) {
				continue
			}
			return nil, fmt.Errorf("GetSecretValue %q: %w", id, err)
		}
		if out.SecretString == nil {
			return nil, fmt.Errorf("secret %q has no string value", id)
		}
		result[id] = *out.SecretString
	}

	return result, nil
}
