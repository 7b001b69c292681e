// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone so status timestamps compare consistently.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Scan environment for _SECRET_ID suffix variables.
//  4. If APP_ENV != "local", resolve them via the SecretProvider and inject
//     the resolved values back into the environment.
//  5. Use envconfig to process struct tags and populate the Config struct.
//  6. Populate BuildInfo from linker-injected variables.
//  7. Validate the struct using go-playground/validator, then decode the
//     embedded JSON documents once so malformed mappings fail startup.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// secretIDSuffix marks pointer variables. For example,
// NOTIFY_API_KEY_SECRET_ID names the Secrets Manager secret holding
// NOTIFY_API_KEY.
const secretIDSuffix = "_SECRET_ID"

// localEnv is the APP_ENV value that bypasses secret resolution.
const localEnv = "local"

type loaderDeps struct {
	lookupEnv func(key string) (string, bool)
	setEnv    func(key, value string) error
	environ   func() []string
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// LoadConfig loads and validates the process configuration.
//
// The provider may be nil for local development; any _SECRET_ID pointer in a
// non-local environment then fails loading.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	time.Local = time.UTC

	// godotenv does NOT override existing environment variables.
	_ = godotenv.Load()

	appEnv, _ := deps.lookupEnv("APP_ENV")
	if appEnv != localEnv {
		if err := resolveSecretRefs(provider, deps); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	if _, err := cfg.Notify.TemplateMap(); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "NOTIFY_TEMPLATES_JSON", Err: err}
	}
	if _, err := cfg.Notify.OrganizationKeyMap(); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "NOTIFY_ORGANIZATION_KEYS_JSON", Err: err}
	}

	return &cfg, nil
}

// ResolveSecrets performs only the secret resolution step. It is used by
// entry points that read a handful of variables directly instead of calling
// LoadConfig.
func ResolveSecrets(provider SecretProvider) error {
	appEnv, _ := os.LookupEnv("APP_ENV")
	if appEnv == localEnv {
		return nil
	}
	return resolveSecretRefs(provider, defaultDeps())
}

// resolveSecretRefs fetches every secret named by a _SECRET_ID variable and
// sets the stripped variable name to its value. A target variable that is
// already set wins (Env > Dotenv > Secrets Manager).
func resolveSecretRefs(provider SecretProvider, deps loaderDeps) error {
	secretToTarget := make(map[string]string)
	var targets []string

	for _, entry := range deps.environ() {
		key, secretID, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasSuffix(key, secretIDSuffix) || secretID == "" {
			continue
		}
		target := strings.TrimSuffix(key, secretIDSuffix)
		if _, exists := deps.lookupEnv(target); exists {
			continue
		}
		secretToTarget[secretID] = target
		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nil
	}

	if provider == nil {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("SecretProvider is required for non-local environments (need to resolve: %s)", strings.Join(targets, ", ")),
		}
	}

	ids := make([]string, 0, len(secretToTarget))
	for id := range secretToTarget {
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolved, err := provider.GetSecretsBatch(ctx, ids)
	if err != nil {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("failed to resolve %d secrets", len(ids)),
			Err:     err,
		}
	}

	var missing []string
	for id, target := range secretToTarget {
		value, ok := resolved[id]
		if !ok {
			missing = append(missing, target)
			continue
		}
		if err := deps.setEnv(target, value); err != nil {
			return &ConfigError{
				Type:    ErrSecretResolution,
				Message: fmt.Sprintf("failed to set resolved value for %s", target),
				Err:     err,
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("secrets not found for: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}
